package lint

// Severity indicates the importance level of a lint issue.
type Severity int

const (
	// SeverityInfo is informational only.
	SeverityInfo Severity = iota
	// SeverityWarning should be fixed but does not block builds.
	SeverityWarning
	// SeverityError blocks the build.
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Issue is a single problem found in a content file.
type Issue struct {
	FilePath string   `json:"file"`
	Severity Severity `json:"severity"`
	Rule     string   `json:"rule"`
	Message  string   `json:"message"`
	Fix      string   `json:"fix,omitempty"`
	Line     int      `json:"line,omitempty"`
}

// Result collects all issues from one lint run.
type Result struct {
	Issues     []Issue `json:"issues"`
	FilesTotal int     `json:"files_total"`
}

// HasErrors reports whether any error-level issue exists.
func (r *Result) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Counts returns the number of issues per severity.
func (r *Result) Counts() (infos, warnings, errors int) {
	for _, issue := range r.Issues {
		switch issue.Severity {
		case SeverityInfo:
			infos++
		case SeverityWarning:
			warnings++
		case SeverityError:
			errors++
		}
	}
	return infos, warnings, errors
}
