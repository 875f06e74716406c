package extractor

import (
	"fmt"
	"strings"
)

// BuildAnalysisPrompt asks for a short, human-readable observation report on
// teaching methodology. The syllabus, when present, is used for coverage.
func BuildAnalysisPrompt(transcript, syllabus string) string {
	syllabusContext := ""
	if s := strings.TrimSpace(syllabus); s != "" {
		syllabusContext = fmt.Sprintf(`

SYLLABUS/CURRICULUM CONTEXT:
%s

Use this syllabus to evaluate coverage and alignment in your analysis.`, s)
	}

	prompt := `You are an AI Classroom Observation Engine specialized in pedagogical analysis.

Analyze teaching methods in a clear, human-readable way that educators can act upon.

RULES:
- Do NOT summarize or rewrite lecture content
- ONLY analyze teaching methodology and observable behaviors
- Be specific and descriptive

Cover:
1. Question frequency and quality (approximate questions per 10 minutes)
2. Wait time after questions and overall pacing
3. Student engagement: dialogue or monologue, approximate teacher talk share
4. Cultural contextualization: Hindi/English code-switching%s

Write 4-5 complete sentences as a natural, flowing observation report.

----------------------------------------------------------------------
TRANSCRIPT TO ANALYZE:
%s
----------------------------------------------------------------------
`
	return fmt.Sprintf(prompt, syllabusContext, transcript)
}

// transcriptExcerpt bounds the transcript copy embedded in the scoring prompt.
const transcriptExcerpt = 3000

// BuildScorePrompt asks for a 0-100 score with reasoning as strict JSON.
func BuildScorePrompt(analysis, transcript, syllabus string) string {
	syllabusScoring := ""
	if s := strings.TrimSpace(syllabus); s != "" {
		excerpt := []rune(transcript)
		if len(excerpt) > transcriptExcerpt {
			excerpt = excerpt[:transcriptExcerpt]
		}
		syllabusScoring = fmt.Sprintf(`

SYLLABUS/CURRICULUM CONTEXT:
%s

CURRICULUM ALIGNMENT (up to 20 additional points):
- Award points for syllabus topics covered, with depth and accuracy
- Deduct points for major syllabus topics that were skipped

TRANSCRIPT CONTENT (for syllabus comparison):
%s...`, s, string(excerpt))
	}

	prompt := `You are an educational assessment expert.

Based on the pedagogical analysis below, provide a quality score from 0-100.

Teaching methodology (80 points):
- Question frequency (0-35): 2-4 per 10 min = 30-35; 1-2 = 20-25; 0-1 = 10-15; none = 5-10
- Wait time (0-20): >3s = 18-20; 1-3s = 10-15; <1s = 5; no questions = 10
- Student participation (0-20): 30-50%% student voice = 18-20; 10-30%% = 10-15; 0-10%% = 5-8
- Cultural engagement (0-5): code-switching present = 5; none = 2-3%s

Guidelines:
- Be fair and realistic; content delivery alone deserves 30-40 points minimum
- Give specific, actionable feedback

PEDAGOGICAL ANALYSIS:
%s

Output ONLY this JSON:
{
  "score": <number 0-100>,
  "reasoning": "<2-3 sentences explaining the score>"
}`
	return fmt.Sprintf(prompt, syllabusScoring, analysis)
}

// BuildMetricsPrompt asks for the numeric indicators as strict JSON.
func BuildMetricsPrompt(transcript string) string {
	prompt := `You are a classroom analytics engine. Estimate these indicators from the lecture transcript.

Return ONLY JSON, no commentary, no backticks:
{
  "review_ratio": <0-100, percent of the lecture spent recapping earlier material>,
  "question_velocity": <0-15, questions asked per 10 minutes>,
  "wait_time": <0-10, average seconds of pause after a question>,
  "teacher_talking_time": <0-100, percent of speaking time by the teacher>,
  "hinglish_fluency": <0-100, how naturally Hindi and English are mixed>
}

If a value cannot be judged, use 0. Do not invent precision.

TRANSCRIPT:
%s
`
	return fmt.Sprintf(prompt, transcript)
}
