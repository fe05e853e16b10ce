/*
Package prj implements Dark Omen battle project (.PRJ) container read/write.

A project file starts with a fixed 32-byte signature followed by ten blocks in
a fixed order: BASE, WATR, FURN, INST, TERR, ATTR, EXCL, MUSC, TRAC and EDIT.
Most blocks declare their payload size, two of them (FURN and ATTR) declare it
off by a constant, and EXCL and TRAC declare none at all, so their payloads are
recovered by scanning for the tag of the block that follows.

Terrain is stored as two heightmaps compressed in 8x8 macroblocks: every block
holds a base height and an index into a shared pool of 64-byte offset tables.

Decode followed by Encode reproduces the input byte for byte. Encode always
recomputes sizes and counts from the in-memory Project, so an edited project
still serializes to a self-consistent file.
*/
package prj
