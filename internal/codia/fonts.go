package codia

// fontSubstitutions maps fonts the detector commonly reports to faces
// guaranteed to exist in presentation viewers. Unmapped families pass
// through unchanged.
var fontSubstitutions = map[string]string{
	"Rethink Sans":        "Arial",
	"Inter":               "Arial",
	"Manrope":             "Arial",
	"DM Sans":             "Arial",
	"Gabarito":            "Arial",
	"Onest":               "Arial",
	"Epilogue":            "Arial",
	"Figtree":             "Arial",
	"Reddit Sans":         "Arial",
	"Space Grotesk":       "Arial",
	"Hedvig Letters Sans": "Arial",
	"Cabin":               "Arial",
	"Archivo":             "Arial",
	"Roboto Flex":         "Arial",
	"Geist":               "Arial",
	"Plus Jakarta Sans":   "Arial",
	"Quicksand":           "Arial",
	"Urbanist":            "Arial",
	"Work Sans":           "Arial",
	"Barlow":              "Arial",
	"Poppins":             "Arial",
	"News Cycle":          "Arial",
}

// SubstituteFont maps a detected font family to a safe target font.
func SubstituteFont(family string) string {
	if mapped, ok := fontSubstitutions[family]; ok {
		return mapped
	}
	return family
}
