// Package io reads and writes person lists in the file formats users upload
// and download.
//
// # Import
//
// [ReadPersonas] picks the decoder from the file name's extension:
//
//   - .json: a list of objects, or an object with a "personas" list
//   - .csv: a header row followed by one record per line
//   - .xlsx: the first sheet, with a header row
//
// Field names are matched leniently (see [persona.FromRecord]), so files
// exported from spreadsheets with English headers such as name, dob or
// parents load the same as files using the canonical names. A parents cell
// may hold several ids separated by ";".
//
// Any other extension yields an UNSUPPORTED error; malformed content yields
// INVALID_FORMAT.
//
// # Export
//
// [WriteJSON] writes the list pretty-printed with two-space indentation,
// leaving non-ASCII characters as they are. [WriteCSV] writes the columns
// id, nombre, fecha_nacimiento, genero, padres with every field quoted and
// parent ids joined by ";". Both outputs load back with [ReadPersonas].
package io
