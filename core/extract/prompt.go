package extract

import (
	"fmt"

	"github.com/gaurav-prasanna/shelfpipe/core"
	"github.com/gaurav-prasanna/shelfpipe/core/schema"
)

const systemPrompt = "You are a text extraction assistant. Extract structured data from messy real text " +
	"for all the listed products and return only valid JSON."

const extractionPrompt = `Extract the fields from the below given text.:

%s

Return JSON only, without extra information.:
%s`

const repairPrompt = `Instructions:
--------------
%s
--------------
Completion:
--------------
%s
--------------

Above, the Completion did not satisfy the constraints given in the Instructions.
Error:
--------------
%v
--------------

Please try again. Please only respond with an answer that satisfies the constraints laid out in the Instructions:`

func extractionMessages(text string) []core.Message {
	return []core.Message{
		{Role: core.RoleSystem, Content: systemPrompt},
		{Role: core.RoleUser, Content: fmt.Sprintf(extractionPrompt, text, schema.FormatInstructions())},
	}
}

func repairMessages(raw string, cause error) []core.Message {
	return []core.Message{
		{Role: core.RoleUser, Content: fmt.Sprintf(repairPrompt, schema.FormatInstructions(), raw, cause)},
	}
}
