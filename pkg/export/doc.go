/*
Package export writes rendered variants to disk and keeps a SQLite ledger of
what was written.

Files land in <output>/<vector_dir>/<species>_<variant>.svg and are replaced
atomically, so a crashed run never leaves half-written drawings behind.

The ledger stores one row per exported variant with a BLAKE3 hash of its
content, and one row per run with its counts. An Exporter with a ledger skips
variants whose content and path are unchanged and whose file still exists,
unless Config.Force is set. The package does not import a database driver;
the caller opens the *sql.DB with whichever SQLite driver it links.
*/
package export
