package wordle

import "context"

// FrequencyFromFile counts the words of one file with a default Engine.
func FrequencyFromFile(ctx context.Context, path string, excludeWords []string) (FrequencyMap, error) {
	e, err := New()
	if err != nil {
		return nil, err
	}
	defer e.Close()
	return e.FrequencyFromFile(ctx, path, excludeWords)
}

// FrequencyFromDirectory counts a directory tree with a default Engine.
func FrequencyFromDirectory(ctx context.Context, path string, excludeWords, excludeDirs []string) (FrequencyMap, error) {
	e, err := New()
	if err != nil {
		return nil, err
	}
	defer e.Close()
	return e.FrequencyFromDirectory(ctx, path, excludeWords, excludeDirs)
}

// FrequencyFromRepository counts a Git repository at ref with a default
// Engine, cloning with go-git.
func FrequencyFromRepository(ctx context.Context, url, ref string, excludeWords, excludeDirs []string) (FrequencyMap, error) {
	e, err := New()
	if err != nil {
		return nil, err
	}
	defer e.Close()
	return e.FrequencyFromRepository(ctx, url, ref, excludeWords, excludeDirs)
}
