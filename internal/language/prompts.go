package language

// Prompts sent to the analysis service. The structured prompts ask for
// bare JSON, but models routinely wrap the payload in prose or code
// fences anyway; the normalize package tolerates that.

const extractTextPrompt = `Extract all English text visible in this photographed book page.
Preserve paragraph breaks. Fix obvious hyphenation at line ends.
Return only the extracted text, with no commentary.
If no readable English text is present, return an empty response.`

const translatePrompt = `Translate the following English text into natural Japanese.
Return only the Japanese translation, with no commentary.`

const vocabularyPrompt = `From the following English text, pick up to 20 words or phrases that a
Japanese learner of English should study. Respond with JSON only, in
exactly this shape:

{"words": [
  {"word": "...",
   "definition": "Japanese definition",
   "example": "an English example sentence",
   "example_translation": "Japanese translation of the example",
   "level": "beginner | intermediate | advanced"}
]}

Do not repeat the same word twice.`

const grammarPrompt = `From the following English text, identify up to 15 grammar patterns
worth studying for a Japanese learner. Respond with JSON only, in
exactly this shape:

{"patterns": [
  {"pattern": "name of the pattern",
   "example": "a sentence taken from the text that uses it",
   "structure": "structural breakdown, e.g. subject + have + past participle",
   "usage": "Japanese explanation of meaning and usage",
   "level": "beginner | intermediate | advanced",
   "more_examples": ["two or three further example sentences"]}
]}`
