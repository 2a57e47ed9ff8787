package llm

// Extraction prompts demand verbatim copying so the model never "improves"
// quantities or invents steps; synthesis prompts are the only place invention
// is allowed, and their output is tagged as AI-derived downstream.

const extractFromHTMLPrompt = `You are a recipe extraction tool. Extract the recipe from the HTML below.

Rules:
- Copy ingredient lines and instruction steps VERBATIM from the page. Do not rephrase, do not summarize, do not invent.
- If a field is not present on the page, leave it empty (or 0 for numbers). Never guess.
- Ingredients must include their quantities exactly as written.
- Return ONLY a JSON object with these keys: title, ingredients (array of strings), instructions (array of strings), servings (integer), prep_time_minutes (integer), cook_time_minutes (integer), total_time_minutes (integer), image_url (string).

HTML:
`

const extractFromTextPrompt = `You are a recipe extraction tool. Extract the recipe from the text below.

Rules:
- Copy ingredient lines and instruction steps VERBATIM from the text. Do not rephrase, do not summarize, do not invent.
- If a field is not present in the text, leave it empty (or 0 for numbers). Never guess.
- Return ONLY a JSON object with these keys: title, ingredients (array of strings), instructions (array of strings), servings (integer), prep_time_minutes (integer), cook_time_minutes (integer), total_time_minutes (integer).

Text:
`

const synthesizeFromTitlePrompt = `You are a recipe developer. Write a complete, realistic recipe for the dish named below.

Rules:
- Write a practical home-cook recipe: real quantities, real steps in cooking order.
- Use between 5 and 15 ingredients and between 4 and 12 instruction steps.
- Return ONLY a JSON object with these keys: title, ingredients (array of strings), instructions (array of strings), servings (integer), prep_time_minutes (integer), cook_time_minutes (integer), total_time_minutes (integer).

Dish:
`

const synthesizeInstructionsPrompt = `You are a recipe developer. Given a dish name and its ingredient list, write the instruction steps.

Rules:
- Use ONLY the ingredients provided. Do not add ingredients.
- Write between 4 and 12 practical steps in cooking order.
- Return ONLY a JSON object with a single key: instructions (array of strings).

`

const repromptPreamble = `Your previous answer violated the output contract. Fix these problems and return the corrected JSON object only:
`
