package mirror

// Config holds configuration for the on-disk mirror.
type Config struct {
	// Path is the tab-delimited mirror file.
	Path string `mapstructure:"path" default:"dantotsu_global_db.csv"`
	// ScopedDir is where scoped (per-author) exports are written, so they
	// never collide with the shared mirror.
	ScopedDir string `mapstructure:"scoped_dir" default:"scoped"`
}
