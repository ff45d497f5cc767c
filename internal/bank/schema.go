package bank

// fileSchemaName identifies the bank file schema in the compiler cache.
const fileSchemaName = "question-bank"

// fileSchema is the JSON schema every bank file is validated against
// before it is decoded.
var fileSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"version": map[string]any{
			"type":    "integer",
			"minimum": 1,
		},
		"questions": map[string]any{
			"type":  "array",
			"items": questionSchema,
		},
	},
	"required":             []any{"questions"},
	"additionalProperties": false,
}

var questionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id": map[string]any{
			"type":      "string",
			"minLength": 1,
		},
		"text": map[string]any{
			"type": "string",
		},
		"category": map[string]any{
			"type":      "string",
			"minLength": 1,
		},
		"difficulty_label": map[string]any{
			"type": "string",
			"enum": []any{"foundational", "applied", "advanced", "strategic"},
		},
		"question_type": map[string]any{
			"type": "string",
			"enum": []any{"single_choice", "multiple_choice", "scenario", "ranking", "code_evaluation", "case_study"},
		},
		"irt_difficulty": map[string]any{
			"type": "number",
		},
		"discrimination": map[string]any{
			"type":        "number",
			"description": "Omitted or 0 means uncalibrated; engine defaults apply.",
		},
		"guessing": map[string]any{
			"type": "number",
		},
		"options": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":         map[string]any{"type": "string", "minLength": 1},
					"text":       map[string]any{"type": "string"},
					"is_correct": map[string]any{"type": "boolean"},
					"points":     map[string]any{"type": "integer", "minimum": 0},
				},
				"required":             []any{"id", "is_correct"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []any{"id", "category", "question_type", "options"},
	"additionalProperties": false,
}
