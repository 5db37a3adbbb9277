package documents

// processableTypes lists the extensions the AI collaborator can extract
// text from. Everything else is stored without processing.
var processableTypes = map[string]bool{
	"pdf": true,
	"txt": true,
	"md":  true,
	"csv": true,
}

// ProcessableFileType reports whether a file type (lowercase extension,
// no dot) can be handed to AI processing.
func ProcessableFileType(fileType string) bool {
	return processableTypes[fileType]
}
