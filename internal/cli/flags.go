package cli

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile string
	GUIMode bool
	Quiet   bool
	Verbose bool
	DryRun  bool

	// Output flags
	OutputPath string
	InPlace    bool
	Backup     bool

	// Conversion flags
	Separator string
	Dedupe    bool
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		Backup:    true,
		Separator: "auto",
	}
}
