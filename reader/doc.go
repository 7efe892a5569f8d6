// Package reader opens PDF files and exposes their pages, metadata and
// objects.
//
// # Opening PDF Files
//
// Use [Open] for a file on disk, [NewReader] for any io.ReaderAt or
// [NewReaderBytes] for data already in memory:
//
//	r, err := reader.Open("document.pdf", reader.WithPassword("secret"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
// # Document Information
//
//   - PDFVersion() - header version, raised by a newer catalog /Version
//   - Info() - the /Info dictionary with text strings decoded to UTF-8
//   - Metadata() - the XMP metadata stream as UTF-8
//   - PageCount(), Pages(), Page(n) - pages counted from 1
//
// # Pages
//
// A [Page] exposes its boxes, inherited attributes, resources, raw content
// and laid out text:
//
//	page, _ := r.Page(1)
//	text, _ := page.Text()
//
// Pages and documents can also be walked with receivers that implement the
// callback interfaces of the contentstream package.
//
// # Objects
//
// [ObjectHash] is the low level view: it maps references to parsed
// objects, follows object streams, decrypts strings and streams, and
// caches what it loads. [Reader.Objects] returns the reader's hash.
package reader
