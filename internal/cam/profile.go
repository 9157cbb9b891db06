package cam

// Profile defines a post-processor configuration for different CNC
// controllers. The generators never hard-code dialect strings; everything
// controller-specific routes through the active profile.
type Profile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsBuiltIn   bool   `json:"is_built_in"`

	// Startup codes
	StartCode    []string `json:"start_code"`    // Commands at start of file
	SpindleStart string   `json:"spindle_start"` // Spindle on command (e.g., "M3 S%.0f")
	SpindleStop  string   `json:"spindle_stop"`  // Spindle off command
	HomeAll      string   `json:"home_all"`      // Home all axes command

	// Motion settings
	RapidMove string `json:"rapid_move"` // G0 or equivalent
	FeedMove  string `json:"feed_move"`  // G1 or equivalent

	// End codes; "[SafeZ]" is replaced with the job's safe Z height
	EndCode []string `json:"end_code"`

	// Comment style
	CommentPrefix string `json:"comment_prefix"` // Comment start (e.g., ";")
	CommentSuffix string `json:"comment_suffix"` // Comment end (e.g., ")" for parenthesized dialects)

	// Number formatting
	DecimalPlaces int `json:"decimal_places"`
}

// Built-in post-processor profiles. The Units/absolute-mode words live in
// StartCode so G21 is always the first non-comment line of a program.
var BuiltinProfiles = []Profile{
	{
		Name:          "Grbl",
		Description:   "Standard Grbl configuration (hobby routers, laser engravers)",
		IsBuiltIn:     true,
		StartCode:     []string{"G21", "G90", "G17", "G94"},
		SpindleStart:  "M3 S%.0f",
		SpindleStop:   "M5",
		HomeAll:       "$H",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M5", "M30"},
		CommentPrefix: ";",
		CommentSuffix: "",
		DecimalPlaces: 3,
	},
	{
		Name:          "Mach3",
		Description:   "Mach3 CNC control software",
		IsBuiltIn:     true,
		StartCode:     []string{"G21", "G90", "G17", "G94"},
		SpindleStart:  "M3 S%.0f",
		SpindleStop:   "M5",
		HomeAll:       "G28 X0 Y0 Z0",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G28 X0 Y0", "M5", "M30"},
		CommentPrefix: ";",
		CommentSuffix: "",
		DecimalPlaces: 4,
	},
	{
		Name:          "LinuxCNC",
		Description:   "LinuxCNC (EMC2) machine control",
		IsBuiltIn:     true,
		StartCode:     []string{"G21", "G90", "G17", "G94", "G40", "G49"},
		SpindleStart:  "M3 S%.0f",
		SpindleStop:   "M5",
		HomeAll:       "G28",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M5", "M30"},
		CommentPrefix: ";",
		CommentSuffix: "",
		DecimalPlaces: 4,
	},
	{
		Name:          "Generic",
		Description:   "Minimal RS-274 output accepted by most controllers",
		IsBuiltIn:     true,
		StartCode:     []string{"G21", "G90"},
		SpindleStart:  "M3 S%.0f",
		SpindleStop:   "M5",
		HomeAll:       "",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "M5", "M30"},
		CommentPrefix: ";",
		CommentSuffix: "",
		DecimalPlaces: 3,
	},
}

// GetProfile returns the named profile, falling back to Generic when the
// name is unknown.
func GetProfile(name string) Profile {
	for _, p := range BuiltinProfiles {
		if p.Name == name {
			return p
		}
	}
	return BuiltinProfiles[len(BuiltinProfiles)-1]
}

// ProfileNames returns the names of all built-in profiles.
func ProfileNames() []string {
	names := make([]string, 0, len(BuiltinProfiles))
	for _, p := range BuiltinProfiles {
		names = append(names, p.Name)
	}
	return names
}
