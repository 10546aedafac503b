package domain

// Generation event types recorded by the event log
const (
	EventWorksheetGenerated  = "worksheet.generated"
	EventProblemGenerated    = "problem.generated"
	EventGenerationExhausted = "generation.exhausted"
	EventWorksheetQueued     = "worksheet.queued"
)
