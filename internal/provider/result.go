// Package provider defines the neutral result shape shared by all
// dictionary provider adapters. Adapters map their wire formats into
// DictionaryResult; the lookup resolver maps it onto domain records.
package provider

// DictionaryResult is the structured result from a dictionary API provider.
// A nil result from an adapter means "not found" for that provider.
type DictionaryResult struct {
	Word     string
	Phonetic string
	AudioURL string
	Meanings []MeaningResult
}

// Empty reports whether the result carries no definitions. The resolver
// treats an empty result as a tier miss.
func (r *DictionaryResult) Empty() bool {
	return r == nil || len(r.Meanings) == 0
}

// MeaningResult groups definitions under one part of speech.
type MeaningResult struct {
	PartOfSpeech string
	Definitions  []DefinitionResult
}

// DefinitionResult is a single definition from an external dictionary.
type DefinitionResult struct {
	Text     string
	Example  string
	Synonyms []string
}
