// Package officexml holds the zip and XML plumbing shared by the office
// document normalisers. OOXML (docx, xlsx, pptx) and OpenDocument files
// are zip archives of XML parts; the helpers here open those archives,
// read parts with a size cap and stream text out of the XML.
package officexml
