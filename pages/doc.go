// Package pages walks the page tree and exposes page attributes.
//
// # Page Tree
//
// [PageTree] flattens the /Pages hierarchy depth-first. Kids arrays may be
// indirect, and a node reached a second time is skipped so a malformed
// tree cannot loop forever.
//
//	tree := pages.NewPageTree(catalog.Get("Pages"), objects)
//	refs, _ := tree.References()
//	page, _ := tree.GetPage(0)
//
// # Inheritance
//
// Resources, MediaBox, CropBox and Rotate are inherited from the nearest
// ancestor that sets them ([InheritableKeys]). [Page.Attributes] returns
// the merged view.
//
// # Boxes
//
// MediaBox defaults to US Letter, CropBox to the MediaBox and the bleed,
// trim and art boxes to the CropBox. Rotate is normalised to a multiple
// of 90 in [0, 360).
//
// # Object Resolution
//
// [ObjectResolver] is the single method this package needs from the
// object store, so it does not depend on the reader.
package pages
