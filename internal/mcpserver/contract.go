package mcpserver

// DocumentFormatContract describes how ChefKnight documents are laid out on
// disk and how their frontmatter is read.
const DocumentFormatContract = `# ChefKnight Document Format

Documents live at ` + "`<category>/<stem>.md`" + ` under the content root. The
stem is the document's identifier inside its category.

## Structure

` + "```" + `markdown
---
title: Aldric the Bold
region: northern-marches
---

# Aldric the Bold

Sworn knight of [[kingdoms/north]].
` + "```" + `

## Rules

1. Frontmatter is optional. When present it MUST start at the very first byte
   of the file with a line of exactly three dashes. A byte-order mark or any
   leading whitespace disables frontmatter and the whole file is the body.
2. The block ends at the next line consisting only of ` + "`---`" + `. A missing
   closing line, or YAML that is not a key/value mapping, is treated as no
   frontmatter: metadata is empty and the body is the raw file.
3. ` + "`title`" + ` is used as the display name; otherwise the first H1 heading is.
4. ` + "`[[target]]`" + ` and ` + "`[[target|alias]]`" + ` are wikilinks.
5. Only files directly inside a category directory count; hidden files
   (starting with a dot) are ignored.

## Categories

kingdoms, characters, regions, continents, races, foods, abilities, weapons,
armour, items, religion (defaults; the running server may be configured
differently, see the ` + "`chefknight://categories`" + ` resource).
`
