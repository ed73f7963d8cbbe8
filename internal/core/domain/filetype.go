package domain

import (
	"path/filepath"
	"strings"
)

// FileCategory groups extensions by how their content can be read.
type FileCategory int

const (
	// CategoryOther is anything without a known reader.
	CategoryOther FileCategory = iota

	// CategoryText is read directly as text.
	CategoryText

	// CategoryDocument needs format-specific extraction.
	CategoryDocument

	// CategoryArchive contains other files.
	CategoryArchive
)

// FileType is the display label and category of a file.
type FileType struct {
	Label     string
	Extension string
	Category  FileCategory
}

// IsText returns true if the file can be read without extraction.
func (t FileType) IsText() bool {
	return t.Category == CategoryText
}

// NeedsExtraction returns true for documents and archives.
func (t FileType) NeedsExtraction() bool {
	return t.Category == CategoryDocument || t.Category == CategoryArchive
}

var fileTypes = map[string]FileType{
	".txt":      {Label: "Text File", Category: CategoryText},
	".text":     {Label: "Text File", Category: CategoryText},
	".log":      {Label: "Log File", Category: CategoryText},
	".md":       {Label: "Markdown File", Category: CategoryText},
	".markdown": {Label: "Markdown File", Category: CategoryText},
	".rst":      {Label: "reStructuredText File", Category: CategoryText},
	".rtf":      {Label: "Rich Text File", Category: CategoryText},
	".csv":      {Label: "CSV File", Category: CategoryText},
	".tsv":      {Label: "TSV File", Category: CategoryText},
	".py":       {Label: "Python Script", Category: CategoryText},
	".js":       {Label: "JavaScript File", Category: CategoryText},
	".jsx":      {Label: "JavaScript File", Category: CategoryText},
	".ts":       {Label: "TypeScript File", Category: CategoryText},
	".tsx":      {Label: "TypeScript File", Category: CategoryText},
	".go":       {Label: "Go Source File", Category: CategoryText},
	".java":     {Label: "Java Source File", Category: CategoryText},
	".c":        {Label: "C Source File", Category: CategoryText},
	".h":        {Label: "C Header File", Category: CategoryText},
	".cpp":      {Label: "C++ Source File", Category: CategoryText},
	".rs":       {Label: "Rust Source File", Category: CategoryText},
	".rb":       {Label: "Ruby Script", Category: CategoryText},
	".sh":       {Label: "Shell Script", Category: CategoryText},
	".sql":      {Label: "SQL File", Category: CategoryText},
	".html":     {Label: "HTML File", Category: CategoryText},
	".htm":      {Label: "HTML File", Category: CategoryText},
	".css":      {Label: "CSS File", Category: CategoryText},
	".json":     {Label: "JSON File", Category: CategoryText},
	".xml":      {Label: "XML File", Category: CategoryText},
	".yaml":     {Label: "YAML File", Category: CategoryText},
	".yml":      {Label: "YAML File", Category: CategoryText},
	".toml":     {Label: "TOML File", Category: CategoryText},
	".ini":      {Label: "INI File", Category: CategoryText},
	".eml":      {Label: "Email Message", Category: CategoryText},
	".pdf":      {Label: "PDF Document", Category: CategoryDocument},
	".docx":     {Label: "Word Document", Category: CategoryDocument},
	".doc":      {Label: "Word Document (Legacy)", Category: CategoryDocument},
	".xlsx":     {Label: "Excel Spreadsheet", Category: CategoryDocument},
	".xls":      {Label: "Excel Spreadsheet (Legacy)", Category: CategoryDocument},
	".pptx":     {Label: "PowerPoint Presentation", Category: CategoryDocument},
	".ppt":      {Label: "PowerPoint Presentation (Legacy)", Category: CategoryDocument},
	".odt":      {Label: "OpenDocument Text", Category: CategoryDocument},
	".ods":      {Label: "OpenDocument Spreadsheet", Category: CategoryDocument},
	".odp":      {Label: "OpenDocument Presentation", Category: CategoryDocument},
	".zip":      {Label: "ZIP Archive", Category: CategoryArchive},
	".tar":      {Label: "TAR Archive", Category: CategoryArchive},
	".tar.gz":   {Label: "Compressed TAR Archive", Category: CategoryArchive},
	".tgz":      {Label: "Compressed TAR Archive", Category: CategoryArchive},
	".gz":       {Label: "GZIP File", Category: CategoryArchive},
}

// Extension returns the lower-cased extension of name, including the dot.
// Compound archive suffixes such as .tar.gz are kept whole.
func Extension(name string) string {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".tar.gz") && len(lower) > len(".tar.gz") {
		return ".tar.gz"
	}
	return filepath.Ext(lower)
}

// TypeForName returns the file type for a file name.
// Unknown extensions are labelled from the extension itself.
func TypeForName(name string) FileType {
	ext := Extension(name)
	if t, ok := fileTypes[ext]; ok {
		t.Extension = ext
		return t
	}
	label := "File"
	if ext != "" {
		label = strings.ToUpper(strings.TrimPrefix(ext, ".")) + " File"
	}
	return FileType{Label: label, Extension: ext, Category: CategoryOther}
}

// KnownExtensions returns every extension with a registered file type.
func KnownExtensions() []string {
	exts := make([]string, 0, len(fileTypes))
	for ext := range fileTypes {
		exts = append(exts, ext)
	}
	return exts
}
