package pipeline

import (
	"fmt"

	"github.com/trugen/triage-service/internal/agent"
	"github.com/trugen/triage-service/internal/domain"
)

// Stage binds a persona to a task template. The first four stages see only
// the raw ticket; the terminal stage additionally receives their outputs.
type Stage struct {
	Name        string
	Persona     agent.Persona
	BuildTask   func(ticket *domain.Ticket) string
	UsesContext bool
}

// StageNameSynthesis identifies the terminal stage whose output carries the
// structured assignment payload.
const StageNameSynthesis = "synthesis"

func ticketSummaryTask(ticket *domain.Ticket) string {
	return fmt.Sprintf("Analyze this ticket: Title: %s, Description: %s. Provide a concise summary and urgency assessment.",
		ticket.Title, ticket.Description)
}

// Stages returns the fixed five-stage sequence of the analysis pipeline.
func Stages() []Stage {
	return []Stage{
		{
			Name: "intake",
			Persona: agent.Persona{
				Role: "Triage Lead",
				Goal: "Analyze the raw customer ticket input to understand the core issue and context.",
				Backstory: "You are an expert at understanding customer issues. " +
					"Your job is to read the ticket title and description and provide a clear summary of the problem, " +
					"detecting the tone and urgency.",
			},
			BuildTask: ticketSummaryTask,
		},
		{
			Name: "classification",
			Persona: agent.Persona{
				Role: "Support Analyst",
				Goal: "Classify the ticket category and determine the basic domain.",
				Backstory: "You have years of experience in customer support. " +
					"You can quickly identify if a ticket is about a payment failure, password reset, or a general query.",
			},
			BuildTask: func(ticket *domain.Ticket) string {
				return fmt.Sprintf("Classify this ticket into one of: Payments, Technical, Access, Infrastructure, or General. Title: %s, Description: %s",
					ticket.Title, ticket.Description)
			},
		},
		{
			Name: "infra",
			Persona: agent.Persona{
				Role: "SRE Analyst",
				Goal: "Investigate infrastructure and reliability concerns such as server downtime or CDN issues.",
				Backstory: "You are an infrastructure expert. You look for keywords like \"timeout\", \"server error\", " +
					"\"slow loading\", or \"video buffering\" to determine if the platform's reliability is affected.",
			},
			BuildTask: func(ticket *domain.Ticket) string {
				return fmt.Sprintf("Analyze if this is an SRE/infra issue. If so, explain why. Title: %s, Description: %s",
					ticket.Title, ticket.Description)
			},
		},
		{
			Name: "backend",
			Persona: agent.Persona{
				Role: "Backend Analyst",
				Goal: "Analyze potential database or server-side logic errors.",
				Backstory: "You are a senior backend developer. You look for issues related to data not saving, " +
					"incorrect calculations, or API errors that aren't platform-wide infrastructure issues.",
			},
			BuildTask: func(ticket *domain.Ticket) string {
				return fmt.Sprintf("Analyze if this is a backend logic or database issue. Title: %s, Description: %s",
					ticket.Title, ticket.Description)
			},
		},
		{
			Name: StageNameSynthesis,
			Persona: agent.Persona{
				Role: "Tech Lead",
				Goal: "Synthesize all insights and officially assign the ticket to the best-suited manager.",
				Backstory: `You are the ultimate decision-maker. You take the analysis from Triage, Support, SRE, and Backend analysts.
You then decide:
1. The Category of the ticket.
2. The Severity (P0, P1, P2) and Priority (High, Medium, Low).
3. Which Manager to assign the ticket to based on their expertise.

Available Managers:
1. Amit Patel (Support Lead) - General queries, billing.
2. Anjali Singh (QA Lead) - Bugs, UI issues.
3. Priya Sharma (Backend Lead) - Server logic, DB issues.
4. Rajesh Kumar (SRE Lead) - Infrastructure, performance, video playback.
5. Vikram Reddy (Security Lead) - Access, data privacy.`,
			},
			BuildTask: func(ticket *domain.Ticket) string {
				return fmt.Sprintf(`Synthesize all previous reports for ticket %s (Title: %s).
Determine:
1. Final Category
2. Severity (P0, P1, P2)
3. Priority (High, Medium, Low)
4. Assigned Manager ID (1-5)
5. Reason for assignment

Provide the output in JSON format:
{
    "category": "...",
    "severity": "...",
    "priority": "...",
    "manager_id": 1,
    "reason": "..."
}`, ticket.ID, ticket.Title)
			},
			UsesContext: true,
		},
	}
}
