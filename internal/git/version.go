package git

import gitbackend "github.com/JetBrains/jbrdiff/internal/git/backend"

// GitVersion returns the output of "git --version".
func GitVersion() (string, error) {
	return gitbackend.GitVersion()
}

func MinGitVersion() string {
	return gitbackend.MinGitVersion()
}
