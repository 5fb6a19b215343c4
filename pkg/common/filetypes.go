package common

import (
	"path/filepath"
	"strings"
)

// ProjectSection is the patcher project bucket a file is listed under.
type ProjectSection string

const (
	SectionPatchers  ProjectSection = "patchers"
	SectionMedia     ProjectSection = "media"
	SectionCode      ProjectSection = "code"
	SectionData      ProjectSection = "data"
	SectionExternals ProjectSection = "externals"
	SectionOther     ProjectSection = "other"
)

// FileType is the classification of a packed file.
type FileType struct {
	Code    string // four character code, space padded
	Kind    string // project file kind, e.g. "javascript"
	Section ProjectSection
}

// Classifier maps a file extension (without the dot) to its file type.
type Classifier func(extension string) FileType

func fileType(code, kind string, section ProjectSection) FileType {
	return FileType{Code: PadTypeCode(code), Kind: kind, Section: section}
}

// PadTypeCode right pads a type code with spaces to 4 bytes.
func PadTypeCode(code string) string {
	if len(code) >= TagLength {
		return code[:TagLength]
	}
	return code + strings.Repeat(" ", TagLength-len(code))
}

var defaultFileType = fileType("DATA", "file", SectionOther)

var fileTypes = map[string]FileType{
	"aif":         fileType("AIFF", "audiofile", SectionMedia),
	"aiff":        fileType("AIFF", "audiofile", SectionMedia),
	"amp":         fileType("ampf", "livedevice", SectionOther),
	"amxd":        fileType("JSON", "maxforlive", SectionPatchers), // packed as the JSON patcher
	"app":         fileType("APPL", "file", SectionOther),
	"asf":         fileType("WMV2", "moviefile", SectionMedia),
	"auinfo":      fileType("AUin", "file", SectionOther),
	"avi":         fileType("VfW", "moviefile", SectionMedia),
	"b3d":         fileType("Jb3d", "model", SectionMedia),
	"bmp":         fileType("BMP", "imagefile", SectionMedia),
	"bvh":         fileType("Jbvh", "model", SectionMedia),
	"caf":         fileType("CAF", "audiofile", SectionMedia),
	"class":       fileType("cafe", "java", SectionCode),
	"clct":        fileType("maxc", "collective", SectionOther),
	"component":   fileType("AUpi", "file", SectionOther),
	"css":         fileType("css", "stylesheet", SectionOther),
	"dae":         fileType("Jdae", "model", SectionMedia),
	"data":        fileType("DATA", "audiofile", SectionMedia),
	"dll":         fileType("aPcs", "audioplugin", SectionOther),
	"exe":         fileType("APPL", "application", SectionOther),
	"fbx":         fileType("FBX", "model", SectionMedia),
	"flac":        fileType("FLAC", "audiofile", SectionMedia),
	"folder":      fileType("fold", "file", SectionOther),
	"fxb":         fileType("AFxB", "file", SectionOther),
	"fxp":         fileType("AFxP", "file", SectionOther),
	"gendsp":      fileType("gDSP", "gendsp", SectionCode),
	"genexpr":     fileType("GenX", "genexpr", SectionOther),
	"genjit":      fileType("gJIT", "genjit", SectionCode),
	"gif":         fileType("GIFf", "imagefile", SectionMedia),
	"glsl":        fileType("TEXT", "shader", SectionCode),
	"help":        fileType("TEXT", "helpfile", SectionPatchers),
	"hibundle":    fileType("xQZZ", "file", SectionOther),
	"htm":         fileType("TEXT", "webpage", SectionOther),
	"html":        fileType("TEXT", "webpage", SectionOther),
	"jar":         fileType("jar", "java", SectionCode),
	"java":        fileType("TEXT", "java", SectionCode),
	"jit":         fileType("JiT!", "jitterdatafile", SectionData),
	"jitmtl":      fileType("Jmtl", "material", SectionMedia),
	"jpeg":        fileType("JPEG", "imagefile", SectionMedia),
	"jpg":         fileType("JPEG", "imagefile", SectionMedia),
	"js":          fileType("TEXT", "javascript", SectionCode),
	"json":        fileType("JSON", "json", SectionData),
	"jxf":         fileType("JiT!", "jitterdatafile", SectionData),
	"jxp":         fileType("TEXT", "pass", SectionCode),
	"jxs":         fileType("TEXT", "shader", SectionCode),
	"lua":         fileType("jlua", "lua", SectionCode),
	"m4a":         fileType("M4a", "audiofile", SectionMedia),
	"maxcoll":     fileType("mQur", "queryfile", SectionOther),
	"maxdefaults": fileType("JSON", "file", SectionOther),
	"maxdefines":  fileType("JSON", "file", SectionOther),
	"maxdict":     fileType("dict", "file", SectionOther),
	"maxhelp":     fileType("JSON", "helpfile", SectionPatchers),
	"maxlesson":   fileType("mLsn", "lesson", SectionOther),
	"maxmap":      fileType("mMap", "maxdatafile", SectionData),
	"maxpack":     fileType("mPak", "file", SectionOther),
	"maxpalette":  fileType("mxPL", "file", SectionOther),
	"maxpat":      fileType("JSON", "patcher", SectionPatchers),
	"maxpref":     fileType("JSON", "file", SectionOther),
	"maxpresets":  fileType("JSON", "maxdatafile", SectionData),
	"maxproj":     fileType("mPrj", "project", SectionOther),
	"maxproto":    fileType("JSON", "prototype", SectionOther),
	"maxquery":    fileType("JSON", "queryfile", SectionOther),
	"maxrefxml":   fileType("TEXT", "file", SectionOther),
	"maxsnip":     fileType("mSnp", "snippetfile", SectionPatchers),
	"maxswatches": fileType("JSON", "file", SectionOther),
	"maxtutxml":   fileType("TEXT", "file", SectionOther),
	"maxvigxml":   fileType("TEXT", "file", SectionOther),
	"maxzip":      fileType("mZip", "project", SectionOther),
	"meshxml":     fileType("Jogr", "file", SectionOther),
	"mid":         fileType("Midi", "midifile", SectionOther),
	"midi":        fileType("Midi", "midifile", SectionOther),
	"mov":         fileType("MooV", "moviefile", SectionMedia),
	"mp3":         fileType("Mp3", "audiofile", SectionMedia),
	"mp4":         fileType("mpg4", "moviefile", SectionMedia),
	"mpeg":        fileType("MPEG", "moviefile", SectionMedia),
	"mpg":         fileType("MPEG", "moviefile", SectionMedia),
	"mxb":         fileType("maxb", "patcher", SectionPatchers),
	"mxc":         fileType("maxc", "collective", SectionOther),
	"mxd":         fileType("iLaF", "file", SectionOther),
	"mxe":         fileType("iLaF", "object", SectionExternals),
	"mxe64":       fileType("mx64", "object", SectionExternals),
	"mxf":         fileType("mx@c", "collective", SectionOther),
	"mxo":         fileType("iLaX", "object", SectionExternals),
	"mxt":         fileType("TEXT", "patcher", SectionPatchers),
	"obj":         fileType("Jobj", "model", SectionMedia),
	"pat":         fileType("maxb", "patcher", SectionPatchers),
	"pct":         fileType("PICT", "imagefile", SectionMedia),
	"pics":        fileType("PICS", "imagefile", SectionMedia),
	"pict":        fileType("PICT", "imagefile", SectionMedia),
	"ply":         fileType("Jply", "model", SectionMedia),
	"png":         fileType("PNG", "imagefile", SectionMedia),
	"psd":         fileType("8BPS", "imagefile", SectionMedia),
	"snd":         fileType("ULAW", "audiofile", SectionMedia),
	"stl":         fileType("Jstl", "model", SectionMedia),
	"svg":         fileType("svg", "vectorimagefile", SectionMedia),
	"swf":         fileType("SWFL", "file", SectionOther),
	"syx":         fileType("Midi", "midifile", SectionOther),
	"tif":         fileType("TIFF", "imagefile", SectionMedia),
	"tiff":        fileType("TIFF", "imagefile", SectionMedia),
	"txt":         fileType("TEXT", "textfile", SectionData),
	"vst":         fileType("aPcs", "file", SectionOther),
	"wav":         fileType("WAVE", "audiofile", SectionMedia),
	"wmv":         fileType("WMVA", "moviefile", SectionMedia),
	"xhtml":       fileType("TEXT", "webpage", SectionOther),
	"xml":         fileType("TEXT", "xmlfile", SectionData),
	"xsl":         fileType("XSLT", "stylesheet", SectionOther),
	"yaml":        fileType("YAML", "yaml", SectionOther),
	"yml":         fileType("YAML", "yaml", SectionOther),
	"zip":         fileType("ZIP", "file", SectionOther),
}

// ClassifyExtension looks an extension up in the static file type table.
// Unknown extensions classify as generic data.
func ClassifyExtension(extension string) FileType {
	if ft, ok := fileTypes[strings.ToLower(strings.TrimPrefix(extension, "."))]; ok {
		return ft
	}
	return defaultFileType
}

// FileExtension returns the extension of path without the dot. Dot-files
// such as ".gitignore" have no extension.
func FileExtension(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == "" || ext == base {
		return ""
	}
	return ext[1:]
}
