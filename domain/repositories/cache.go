package repositories

// TranslationCache memoizes successful message conversions keyed by the
// cleaned input text. Only successful conversions are stored, so a transient
// provider failure retries on the next identical input.
type TranslationCache interface {
	Get(key string) (string, bool)
	Set(key, value string)
}
