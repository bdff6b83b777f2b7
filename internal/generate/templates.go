package generate

// Module names in pipeline order. Question generation sees the generated
// passage through the accumulated outputs.
const (
	ModulePassage     = "passage"
	ModuleQuestions   = "questions"
	ModuleDistractors = "distractors"
)

// Modules lists the pipeline modules a candidate must carry prompts for.
var Modules = []string{ModulePassage, ModuleQuestions}

const basePassagePrompt = `SYSTEM: You are an IELTS Academic Reading passage generator.

TASK:
- Write ONE IELTS Academic Reading passage about the given topic.
- Length: 800-1000 words (ideal ~900).
- Structure: 5-9 labeled paragraphs, each starting with "Text: A.", "Text: B.", and so on.
- Style: academic, formal, factual, not conversational.
- At the very end, include a single line starting with exactly: Summary:
If you cannot follow ALL requirements, regenerate until you do.`

const baseQuestionsPrompt = `SYSTEM: You are an IELTS Multiple Choice Question (MCQ) generator.

TASK:
- Write 3 IELTS-style MCQs based on the passage.
- Each question must have exactly 4 options (a, b, c, d).
- Provide exactly one correct answer.
- Output MUST be valid JSON array (and nothing else).
- Use this schema:

[
  {
    "id": "Q1",
    "question_text": "What is the main purpose of ...?",
    "options": ["Option a", "Option b", "Option c", "Option d"],
    "answer": "b"
  },
  {
    "id": "Q2",
    "question_text": "According to the passage, ...",
    "options": ["Option a", "Option b", "Option c", "Option d"],
    "answer": "c"
  },
  {
    "id": "Q3",
    "question_text": "Which of the following is true ...?",
    "options": ["Option a", "Option b", "Option c", "Option d"],
    "answer": "d"
  }
]

STRICT: Output must be valid JSON only, no explanations, no extra text.`

const baseDistractorsPrompt = `SYSTEM: You are an IELTS distractor generator.

EXAMPLE SUMMARIES OF DISTRACTOR TYPES:
- Lexical Similarity: Wrong option looks similar in wording (synonyms, paraphrased terms).
- Plausible but Wrong Detail: Option mentions something present in passage but not correct for the question.
- Outside Knowledge Trap: Option is plausible using world knowledge but not supported in passage.
- Opposite/Contradiction: Option states the reverse of what passage says.
- Irrelevant but Related Topic: Option is thematically related but not directly answering.
- Overgeneralisation: Option uses extreme or absolute wording not supported by passage.

TASK:
1) For each question (or for the passage in general), produce a short list of distractors following the patterns above.
2) Output a JSON array of objects:
   { "for_question_id": "...",
   "distractors": [ { "text": "...", "pattern": "..." }, ... ] }`

const rewritePromptTemplate = `You are an IELTS Reading Passage Rewriter.
Your task is to take an existing passage and improve it so it better resembles an authentic IELTS Reading passage.

### Instructions:
- Keep the academic but accessible style used in IELTS.
- Revise according to the provided feedback categories.
- Ensure the passage is about 850-950 words, divided into 8 labeled paragraphs (A-H).
- Maintain a balance of sentence types:
  - About 60%% complex sentences
  - About 40%% simple/compound sentences
  - Max sentence length: 35 words
  - Most sentences should be around 25-30 words, or less. Add more simple sentences so that the passage is familiar to 6.0-7.0 students.
- Vocabulary:
  - Target CEFR B2-C1
  - Academic Word List (AWL) should appear frequently
  - Limit rare/technical words to <5%%, and define them if used
- Readability:
  - Flesch Reading Ease: 40-60
  - Flesch-Kincaid Grade: 9-11
- Content:
  - Mix of factual explanation, examples, statistics, and one case study
  - Neutral, informative tone (not persuasive or emotional)
  - Finish with a 1-2 sentence summary line starting with "Summary: ..."

### Input:
Original Passage:
%s

Feedbacks:
%s

### Output:
A fully rewritten IELTS-like passage adjusted per all feedback, with paragraphs A-H and a final Summary line.`

// BasePrompts returns the seed prompt set used to initialize the candidate
// pool.
func BasePrompts() map[string]string {
	return map[string]string{
		ModulePassage:   basePassagePrompt,
		ModuleQuestions: baseQuestionsPrompt,
	}
}
