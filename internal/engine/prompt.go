package engine

// LLM prompt templates — data only, no logic.

// guidancePrompt asks for a plain-text career guidance narrative.
// Args: personality type, type title, skills section, preferences section.
const guidancePrompt = `You are an experienced career counselor. Write personalized career guidance for the person described below.

Personality type: %s (%s)

Top skills (self-rated):
%s
%s
Requirements:
- Plain text only, 3-5 paragraphs. No markdown (no **, ##, -, *), no headings, no lists.
- Recommend 3-4 concrete career directions that fit the personality type and skills.
- For each direction, say why it fits and what the next practical step is.
- Reference their stated interests and goals where relevant.
- Do NOT restate these instructions and do NOT echo the input back.
- Write in the second person, warm but specific.`

// preferencesSection formats the optional preference block of guidancePrompt.
// Args: interests, values, career goals.
const preferencesSection = `
Interests: %s
Values: %s
Career goals: %s
`
