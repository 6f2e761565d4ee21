package settings

// Settings file names, in lookup order
const (
	FileTOML = ".mdnls.toml"
	FileYAML = ".mdnls.yaml"
	FileYML  = ".mdnls.yml"
	FileLua  = ".mdnls.lua"
)

// Lua schema field names and globals
const (
	luaGlobalLSP      = "lsp"
	luaFieldBinary    = "binary"
	luaFieldPath      = "path"
	luaFieldArguments = "arguments"
)
