// Package replay stores a simulation session as a ZIP archive of sections.
//
// Each section pairs the snapshots taken at a checkpoint with the commands
// issued since the previous one:
//   - info: the session metadata document (JSON or msgpack)
//   - maps/{sid}_{mapId}_save, maps/{sid}_{mapId}_cmds: per-map snapshot and command log
//   - world/{sid}_save, world/{sid}_cmds: world snapshot and global command log
//
// sid is the zero-based section index padded to three digits. Command logs
// are a little-endian int32 count followed by int32 length-prefixed command
// payloads.
//
// Sections are appended with WriteSection and read back with LoadSection.
// Each call opens and closes the archive; the info entry is rewritten only
// after the section data is on disk.
package replay
