package generation

import "fmt"

const untitledQuiz = "Untitled Quiz"

func summaryPrompt(text string) string {
	return fmt.Sprintf("Summarize the following document in concise points:\n\n%s", text)
}

func quizPrompt(text string) string {
	return fmt.Sprintf(`Generate 10 multiple-choice questions (MCQs) based on the following document. Each question should have:
- One correct answer
- Three incorrect options
- Questions should test key concepts from the content

Return ONLY valid JSON array in this exact format (no markdown, no code blocks, no extra text):

[
    {
        "question": "Question text here?",
        "options": ["Option A", "Option B", "Option C", "Option D"],
        "correct": "A"
    },
    ... (9 more questions)
]

Document content:
%s
`, text)
}
