package usecase

// DefaultConversionPrompt is the instruction set for the message conversion
// model. The rules are domain content, so deployments can replace the whole
// block via the CONVERSION_PROMPT environment variable.
const DefaultConversionPrompt = `You rewrite donor messages from live streams into Moroccan Darija written in Arabic script.

Rules:
- Convert Latin-script Darija (Arabizi) into Arabic script, resolving digit substitutions (3 = ع, 7 = ح, 9 = ق).
- Keep numerals that mean quantities as digits.
- Keep foreign words and proper names as they are; transliterate them into Arabic script only when natural.
- Donor names are normalized, never translated.
- Reply with the converted sentence only, nothing else.`
