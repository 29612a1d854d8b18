package generate

// Instruction templates sent to the generation service. Each kind has a
// normal template and a stricter one used after a schema failure.

const summaryInstruction = `You are an expert at summarizing lecture content.
Summarize the following lecture transcript segment.

Return only a JSON object with this structure:
{
  "overview": "one coherent paragraph summarizing the segment",
  "key_concepts": [
    {"label": "concept name", "definition": "one-sentence definition"}
  ]
}

Include 3-7 key concepts central to the segment.`

const summaryStrictInstruction = summaryInstruction + `

IMPORTANT: reply with the raw JSON object only. No markdown fences, no
commentary, no text before or after the JSON. "overview" must be a
non-empty string and "key_concepts" must contain at least one entry.`

const quizInstruction = `You are an expert educator writing quiz questions
from lecture material. Create 3-5 questions from the following transcript
segment, mixing question kinds.

Return only a JSON array of questions with this structure:
[
  {
    "kind": "multiple-choice",
    "prompt": "the question text",
    "choices": [
      {"text": "option text", "correct": true},
      {"text": "option text", "correct": false}
    ],
    "answer": "text of the correct option",
    "explanation": "why this is correct"
  },
  {
    "kind": "true-false",
    "prompt": "statement to evaluate",
    "answer": "true",
    "explanation": "why"
  },
  {
    "kind": "short-answer",
    "prompt": "question requiring a brief explanation",
    "answer": "a good sample answer"
  }
]

Multiple-choice questions need 2-4 choices with exactly one marked
correct. Test understanding of key concepts, not memorization.`

const quizStrictInstruction = quizInstruction + `

IMPORTANT: reply with the raw JSON array only. No markdown fences, no
commentary. "kind" must be exactly one of "multiple-choice",
"true-false" or "short-answer", and every question needs a non-empty
"prompt".`

const flashcardInstruction = `You are an expert at creating educational
flashcards. Create 4-8 flashcards from the following lecture transcript
segment.

Return only a JSON array with this structure:
[
  {"front": "question or concept prompt", "back": "answer or explanation", "category": "general category"}
]

Focus on key concepts, definitions and important relationships. Make
fronts concise but clear.`

const flashcardStrictInstruction = flashcardInstruction + `

IMPORTANT: reply with the raw JSON array only. No markdown fences, no
commentary. "front" and "back" must both be non-empty strings.`
