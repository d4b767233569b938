package findings

// Finding is one candidate hardcoded credential and where it was found.
type Finding struct {
	FilePath      string `json:"file_path"`
	MatchedString string `json:"matched_string"`
	LineNumber    int    `json:"line_number"`
	FullLine      string `json:"full_line"`
}

// Row returns the finding as a report row in column order.
func (f Finding) Row() []interface{} {
	return []interface{}{f.FilePath, f.MatchedString, f.LineNumber, f.FullLine}
}

// Header is the fixed column layout of every report.
var Header = []string{"File Path", "Matched String", "Line Number", "Full Line"}
