package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// OptionType is the expected type of an option value.
type OptionType string

const (
	TypeString OptionType = "string"
	// TypeBool accepts true/false/yes/no/1/0/on/off.
	TypeBool OptionType = "bool"
	TypeInt  OptionType = "int"
	// TypePath is a filesystem path. A leading ~/ is expanded by ResolvePath.
	TypePath OptionType = "path"
)

// ConfigOption declares one option.
type ConfigOption struct {
	Key         string
	Type        OptionType
	Default     string
	Description string
	// Section is "" for global options, or a command name.
	Section string
	// EnvVar overrides the configured value when set.
	EnvVar string
}

// ConfigSchema is the set of known options. It drives validation, the help
// listing, and env var resolution.
type ConfigSchema struct {
	options   []*ConfigOption
	byKey     map[string]*ConfigOption
	bySection map[string]map[string]*ConfigOption
}

// NewSchema creates an empty schema.
func NewSchema() *ConfigSchema {
	return &ConfigSchema{
		byKey:     make(map[string]*ConfigOption),
		bySection: make(map[string]map[string]*ConfigOption),
	}
}

// Register adds opt. A later registration of the same key wins.
func (s *ConfigSchema) Register(opt ConfigOption) {
	ref := new(ConfigOption)
	*ref = opt
	s.options = append(s.options, ref)
	if opt.Section == "" {
		s.byKey[opt.Key] = ref
		return
	}
	if s.bySection[opt.Section] == nil {
		s.bySection[opt.Section] = make(map[string]*ConfigOption)
	}
	s.bySection[opt.Section][opt.Key] = ref
}

// RegisterAll adds every option in opts.
func (s *ConfigSchema) RegisterAll(opts []ConfigOption) {
	for _, opt := range opts {
		s.Register(opt)
	}
}

// Lookup returns the option for key in section ("" for global), or nil.
func (s *ConfigSchema) Lookup(section, key string) *ConfigOption {
	if section == "" {
		return s.byKey[key]
	}
	return s.bySection[section][key]
}

// IsKnown reports whether key may appear in section. Global keys may appear
// in any command section.
func (s *ConfigSchema) IsKnown(section, key string) bool {
	if section != "" && s.bySection[section][key] != nil {
		return true
	}
	return s.byKey[key] != nil
}

// GlobalOptions returns the global options in registration order.
func (s *ConfigSchema) GlobalOptions() []ConfigOption {
	return s.SectionOptions("")
}

// SectionOptions returns the options of section in registration order.
func (s *ConfigSchema) SectionOptions(section string) []ConfigOption {
	var out []ConfigOption
	for _, o := range s.options {
		if o.Section == section {
			out = append(out, *o)
		}
	}
	return out
}

// Sections returns the sorted names of all command sections.
func (s *ConfigSchema) Sections() []string {
	out := make([]string, 0, len(s.bySection))
	for sec := range s.bySection {
		out = append(out, sec)
	}
	sort.Strings(out)
	return out
}

// Resolve returns the effective value of a global key: the option's env var
// if set, else the configured value, else the default.
func (s *ConfigSchema) Resolve(c *Config, key string) string {
	opt := s.Lookup("", key)
	if opt != nil && opt.EnvVar != "" {
		if v, ok := os.LookupEnv(opt.EnvVar); ok {
			return v
		}
	}
	if v, ok := c.GetGlobalOption(key); ok {
		return v
	}
	if opt != nil {
		return opt.Default
	}
	return ""
}

// ResolveBool is Resolve parsed as a bool. Unparsable values fall back to the
// default.
func (s *ConfigSchema) ResolveBool(c *Config, key string) bool {
	if b, err := parseBool(s.Resolve(c, key)); err == nil {
		return b
	}
	if opt := s.Lookup("", key); opt != nil {
		b, _ := parseBool(opt.Default)
		return b
	}
	return false
}

// ResolveInt is Resolve parsed as an int. Unparsable values fall back to the
// default.
func (s *ConfigSchema) ResolveInt(c *Config, key string) int {
	def := 0
	if opt := s.Lookup("", key); opt != nil {
		def = atoiOr(opt.Default, 0)
	}
	return atoiOr(s.Resolve(c, key), def)
}

// ResolvePath is Resolve with a leading ~/ expanded to the home directory.
func (s *ConfigSchema) ResolvePath(c *Config, key string) string {
	return ExpandHome(s.Resolve(c, key))
}

// ExpandHome expands a leading ~/ in p to the user's home directory.
func ExpandHome(p string) string {
	rest, ok := strings.CutPrefix(p, "~/")
	if !ok {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return home + string(os.PathSeparator) + rest
}

// ValidateConfig returns the sorted list of unknown options and type
// mismatches in c.
func ValidateConfig(c *Config, s *ConfigSchema) []string {
	var issues []string

	for key, value := range c.Global {
		opt := s.Lookup("", key)
		if opt == nil {
			issues = append(issues, fmt.Sprintf("unknown global option: %q (value: %q)", key, value))
			continue
		}
		if err := validateType(opt.Type, value); err != nil {
			issues = append(issues, fmt.Sprintf("global option %q: %v", key, err))
		}
	}

	for section, opts := range c.Commands {
		for key, value := range opts {
			if !s.IsKnown(section, key) {
				issues = append(issues, fmt.Sprintf("unknown option for command %q: %q (value: %q)", section, key, value))
				continue
			}
			opt := s.Lookup(section, key)
			if opt == nil {
				opt = s.Lookup("", key)
			}
			if err := validateType(opt.Type, value); err != nil {
				issues = append(issues, fmt.Sprintf("option %q in [%s]: %v", key, section, err))
			}
		}
	}

	sort.Strings(issues)
	return issues
}

func validateType(t OptionType, value string) error {
	switch t {
	case TypeString, TypePath, "":
		return nil
	case TypeBool:
		if _, err := parseBool(value); err != nil {
			return fmt.Errorf("expected bool, got %q", value)
		}
	case TypeInt:
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("expected int, got %q", value)
		}
	default:
		return fmt.Errorf("unknown option type %q", t)
	}
	return nil
}

// FormatHelp lists every option, global first, then by section.
func (s *ConfigSchema) FormatHelp() string {
	var b strings.Builder
	if globals := s.GlobalOptions(); len(globals) > 0 {
		b.WriteString("Global Options:\n")
		for _, o := range globals {
			writeOptionHelp(&b, o)
		}
	}
	for _, sec := range s.Sections() {
		fmt.Fprintf(&b, "\n[%s] Options:\n", sec)
		for _, o := range s.SectionOptions(sec) {
			writeOptionHelp(&b, o)
		}
	}
	return b.String()
}

func writeOptionHelp(b *strings.Builder, o ConfigOption) {
	fmt.Fprintf(b, "  %-22s %s", o.Key, o.Description)
	var parts []string
	if o.Type != "" && o.Type != TypeString {
		parts = append(parts, "type: "+string(o.Type))
	}
	if o.Default != "" {
		parts = append(parts, "default: "+o.Default)
	}
	if o.EnvVar != "" {
		parts = append(parts, "env: "+o.EnvVar)
	}
	if len(parts) > 0 {
		fmt.Fprintf(b, " (%s)", strings.Join(parts, ", "))
	}
	b.WriteString("\n")
}

// Option keys.
const (
	KeyDatabasePath   = "database.path"
	KeyExportDir      = "export.dir"
	KeySnapshotDir    = "snapshot.dir"
	KeySnapshotPrefix = "snapshot.prefix"
	KeySyncDir        = "storage.sync-dir"
	KeyLogLevel       = "log.level"
	KeyLogFile        = "log.file"
	KeyLogMaxSizeMB   = "log.max-size-mb"
	KeyLogMaxFiles    = "log.max-files"
	KeyVerbose        = "verbose"
)

// DefaultSchema declares every option shopdb understands.
func DefaultSchema() *ConfigSchema {
	s := NewSchema()
	s.RegisterAll([]ConfigOption{
		{Key: KeyDatabasePath, Type: TypePath, Description: "Database file (default ~/.shopdb/database.json)", EnvVar: "SHOPDB_DATABASE"},
		{Key: KeyExportDir, Type: TypePath, Default: "exports", Description: "Folder receiving exported reports"},
		{Key: KeySnapshotDir, Type: TypePath, Default: "backups", Description: "Folder receiving timestamped snapshots"},
		{Key: KeySnapshotPrefix, Type: TypeString, Default: "backup_shop", Description: "Snapshot file name prefix"},
		{Key: KeySyncDir, Type: TypeBool, Default: "true", Description: "Flush the parent directory after each save"},
		{Key: KeyVerbose, Type: TypeBool, Default: "false", Description: "Log to stderr"},

		{Key: KeyLogLevel, Type: TypeString, Default: "info", Description: "Log level: debug, info, warn, error", EnvVar: "SHOPDB_LOG_LEVEL"},
		{Key: KeyLogFile, Type: TypePath, Description: "Log file path (JSON lines)", EnvVar: "SHOPDB_LOG_FILE"},
		{Key: KeyLogMaxSizeMB, Type: TypeInt, Default: "10", Description: "Max log file size in MB before rotation"},
		{Key: KeyLogMaxFiles, Type: TypeInt, Default: "5", Description: "Rotated log files to keep"},

		{Key: "name", Section: "export", Type: TypeString, Default: "report.csv", Description: "Default export file name"},
		{Key: "folder", Section: "export", Type: TypePath, Description: "Export folder for this command only"},
	})
	return s
}
