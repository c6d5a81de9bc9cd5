package model

// BuildScript is a user-declared script phase. Exactly one of Inline and
// Path is set; Path defers reading the body to the script source at
// compile time.
type BuildScript struct {
	Name   string
	Inline string
	Path   string

	Shell                 string // defaults to /bin/sh
	InputFiles            []string
	OutputFiles           []string
	ShowEnv               bool
	RunOnlyWhenInstalling bool
}
