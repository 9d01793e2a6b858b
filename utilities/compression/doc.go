// Package compression produces compact snapshots of whole volume images.
//
// A freshly formatted volume is almost entirely null bytes, and even a busy one
// has long runs of them in the unused tail of every block. Snapshots are run
// -length encoded first and the result is gzipped; gzip alone does noticeably
// worse on megabytes of zeros than it does on the short RLE8 stream.
//
// The run-length scheme is RLE8 as used by the BMP file format. A byte that
// occurs N >= 2 times in a row is written twice, followed by one unsigned byte
// giving the number of additional repetitions:
//
//	WXXXXXXXXXXXXXXXYZZ
//	W XX 13 Y ZZ 0
//
// A run can therefore cover at most 257 bytes; longer runs are split. A byte
// that occurs exactly twice costs three bytes.
package compression
