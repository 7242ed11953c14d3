// Package feedtest provides a ProfileSource test double, so callers can
// exercise pkg/feed without constructing a full domain.UserProfile.
package feedtest

// FakeProfile is a ProfileSource test double with directly settable
// fields.
type FakeProfile struct {
	Preferred          []string
	GithubLangs        []string
	StackAreas         []string
	Skills             []string
	JobTitles          []string
	PreferredTopicsVal []string
	GithubTopicsVal    []string
}

func (f FakeProfile) PreferredLanguages() []string { return f.Preferred }
func (f FakeProfile) GithubLanguages() []string    { return f.GithubLangs }
func (f FakeProfile) IntentStackAreas() []string   { return f.StackAreas }
func (f FakeProfile) ResumeSkills() []string       { return f.Skills }
func (f FakeProfile) ResumeJobTitles() []string    { return f.JobTitles }
func (f FakeProfile) PreferredTopics() []string    { return f.PreferredTopicsVal }
func (f FakeProfile) GithubTopics() []string       { return f.GithubTopicsVal }
