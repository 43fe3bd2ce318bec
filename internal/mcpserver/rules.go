package mcpserver

// PathRules describes how Raido resolves read and write paths. MCP
// consumers should follow it when passing paths to the file tools.
const PathRules = `# Raido Path Resolution Rules

Every path passed to a Raido tool is resolved against the server's
configured search path (reads) or write directory (writes).

## Search path (reads)

` + "```" + `
./data/?;./base/?;./base/cfg/?.ini
` + "```" + `

- The search path is a list of directory templates separated by ` + "`" + `;` + "`" + `.
- Each ` + "`" + `?` + "`" + ` in a template is replaced by the name you pass.
- Templates are tried left to right; the first one that names an existing
  file or directory wins.
- A template without ` + "`" + `?` + "`" + ` is used as-is and ignores your name entirely.
- Empty list entries (` + "`" + `;;` + "`" + `) are skipped.

Example: with the search path above, ` + "`" + `read_file("app")` + "`" + ` tries
` + "`" + `./data/app` + "`" + `, then ` + "`" + `./base/app` + "`" + `, then ` + "`" + `./base/cfg/app.ini` + "`" + `.

## Write directory (writes)

- The write directory is a single template, never a list. A ` + "`" + `;` + "`" + ` in it is
  a literal path character.
- ` + "`" + `write_file` + "`" + `, ` + "`" + `append_file` + "`" + `, ` + "`" + `remove_path` + "`" + `, ` + "`" + `make_dir` + "`" + ` and
  ` + "`" + `fetch_remote` + "`" + ` all expand their path through it.

## Rules

1. **Use relative paths.** Forward slashes, no drive letters, no leading ` + "`" + `/` + "`" + `.
2. **No traversal.** Any path containing ` + "`" + `..` + "`" + ` is rejected on the write side.
3. **Length limit.** Expanded paths longer than the configured maximum
   (256 bytes by default) fail with a path-too-long error.
4. **Writes create parents.** ` + "`" + `write_file("logs/2024/app.log", ...)` + "`" + ` creates
   ` + "`" + `logs/` + "`" + ` and ` + "`" + `logs/2024/` + "`" + ` as needed.
5. **make_dir is strict.** It fails if the directory already exists; only its
   missing parents are tolerated.
6. **remove_path deletes one thing.** Files and empty directories only; it
   never recurses.
7. **Reads search, writes do not.** A freshly written file is only visible to
   ` + "`" + `read_file` + "`" + ` if some search path template reaches the write directory.

## Example

` + "```" + `
write_file("cfg/server.ini", "[net]\nport=7777\n")
  -> {"path": "cfg/server.ini", "written": 17, "size": 17, "checksum": "..."}

read_file("cfg/server.ini")
  -> "[net]\nport=7777\n"

make_dir("saves/slot1")
  -> created: saves/slot1

remove_path("cfg/server.ini")
  -> removed: cfg/server.ini
` + "```" + `
`
