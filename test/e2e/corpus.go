// Package e2e exercises the full indexing and search pipeline against a
// corpus of files written to disk in every supported format.
package e2e

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CorpusFile is a single document in the test corpus. Name carries the
// extension, which decides the on-disk format the file is written in.
type CorpusFile struct {
	Name    string
	Content string
}

// QueryCase pairs a search query with the file names a correct ranking
// should surface for it.
type QueryCase struct {
	Query         string
	ExpectedNames []string
	Description   string
}

// Corpus is the full document set plus the queries run against it.
type Corpus struct {
	Files []CorpusFile
	Cases []QueryCase
}

// containsPhrase reports whether the file's content mentions the phrase,
// ignoring case.
func containsPhrase(f CorpusFile, phrase string) bool {
	return strings.Contains(strings.ToLower(f.Content), strings.ToLower(phrase))
}

// Extension returns the file's extension without the leading dot.
func (f CorpusFile) Extension() string {
	return strings.TrimPrefix(filepath.Ext(f.Name), ".")
}

// WriteFiles materializes the corpus under dir, encoding each file in the
// format its extension names. It returns a map from corpus name to the
// absolute path the file was written at.
func (c Corpus) WriteFiles(dir string) (map[string]string, error) {
	paths := make(map[string]string, len(c.Files))
	for _, f := range c.Files {
		data, err := BuildFileBytes(filepath.Ext(f.Name), f.Content)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", f.Name, err)
		}
		path := filepath.Join(dir, f.Name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("abs %s: %w", path, err)
		}
		paths[f.Name] = abs
	}
	return paths, nil
}

// BuildCorpus returns a corpus modeled on a personal document collection:
// notes, spreadsheets, slide decks and letters spread across every
// supported extension. Each file repeats a distinctive phrase so that
// bag-of-words embeddings rank it above unrelated documents.
func BuildCorpus() Corpus {
	files := []CorpusFile{
		{
			Name:    "meeting-notes-roadmap.txt",
			Content: "Product roadmap planning meeting covering the next two quarters. The roadmap planning discussion prioritized the billing rewrite and the mobile launch.",
		},
		{
			Name:    "grocery-list-weekly.txt",
			Content: "Weekly grocery shopping list for the household. The grocery list includes oat milk, spinach, lentils and coffee beans.",
		},
		{
			Name:    "server-restart-runbook.txt",
			Content: "Runbook describing how to restart the application server safely. Always drain connections before the server restart and verify health checks afterwards.",
		},
		{
			Name:    "password-policy-memo.txt",
			Content: "Memo on the password rotation policy for internal accounts. Password rotation happens every ninety days and reuse is blocked.",
		},
		{
			Name:    "standup-summary-march.txt",
			Content: "Daily standup summary for the first week of March. The standup summary lists blockers on the payments integration.",
		},
		{
			Name:    "wifi-router-settings.txt",
			Content: "Wireless router configuration notes for the home network. The router settings cover the guest network and port forwarding rules.",
		},
		{
			Name:    "car-maintenance-log.txt",
			Content: "Car maintenance log with oil change and tire rotation dates. The last oil change was at sixty thousand kilometers.",
		},
		{
			Name:    "api-design-guidelines.md",
			Content: "REST API design guidelines for the platform team. The API guidelines cover versioning, pagination and error response shapes.",
		},
		{
			Name:    "onboarding-checklist.md",
			Content: "New engineer onboarding checklist for the first week. The onboarding checklist covers laptop setup, repository access and a starter task.",
		},
		{
			Name:    "sourdough-bread-recipe.md",
			Content: "Sourdough bread starter recipe with a three day schedule. Feed the sourdough starter twice daily and bake the bread on day four.",
		},
		{
			Name:    "kubernetes-deployment-notes.md",
			Content: "Kubernetes deployment rollout notes for the staging cluster. The deployment rollout uses a canary stage before full promotion.",
		},
		{
			Name:    "database-migration-plan.md",
			Content: "Database schema migration plan for splitting the orders table. The migration plan runs backfill jobs before switching reads.",
		},
		{
			Name:    "incident-postmortem-outage.md",
			Content: "Production outage postmortem for the March incident. The postmortem traces the outage to an expired certificate on the load balancer.",
		},
		{
			Name:    "home-renovation-ideas.md",
			Content: "Kitchen renovation ideas collected from magazines and visits. The renovation ideas include an island counter and open shelving.",
		},
		{
			Name:    "sphinx-docs-style.rst",
			Content: "Documentation style guide for reference pages. The style guide asks for short sentences, one concept per page and tested code samples.",
		},
		{
			Name:    "release-notes-v2.rst",
			Content: "Release notes for version two of the service. The version two release notes describe the new export endpoint and two breaking changes.",
		},
		{
			Name:    "contributing-guide.rst",
			Content: "Contributing guide for the open source project. The contributing guide explains branch naming, review etiquette and the changelog process.",
		},
		{
			Name:    "architecture-overview.rst",
			Content: "System architecture overview of the ingestion platform. The architecture overview walks through the queue, the workers and the storage layer.",
		},
		{
			Name:    "testing-strategy.rst",
			Content: "Integration testing strategy for the billing pipeline. The testing strategy favors real databases in containers over mocks.",
		},
		{
			Name:    "changelog-history.rst",
			Content: "Changelog of historical releases back to the first beta. The changelog records every release with its date and migration notes.",
		},
		{
			Name:    "glossary-terms.rst",
			Content: "Glossary of domain terms used across the codebase. The glossary defines tenant, ledger, settlement and reconciliation.",
		},
		{
			Name:    "job-offer-letter.docx",
			Content: "Job offer letter with salary and start date details. The offer letter lists the base salary, the equity grant and the signing bonus.",
		},
		{
			Name:    "lease-agreement-apartment.docx",
			Content: "Apartment lease agreement for the flat on Elm Street. The lease agreement runs twelve months with a two month deposit.",
		},
		{
			Name:    "cover-letter-draft.docx",
			Content: "Cover letter draft for the staff engineer application. The cover letter highlights distributed systems work and mentoring.",
		},
		{
			Name:    "wedding-invitation-draft.docx",
			Content: "Wedding invitation wording drafts for the June ceremony. The invitation drafts include a formal version and a casual version.",
		},
		{
			Name:    "performance-review-self.docx",
			Content: "Annual performance review self assessment. The self assessment covers the search relaunch project and on-call improvements.",
		},
		{
			Name:    "insurance-claim-letter.docx",
			Content: "Insurance claim letter for water damage in the basement. The claim describes the burst pipe, the water damage to the floor and repair quotes.",
		},
		{
			Name:    "book-club-discussion.docx",
			Content: "Book club discussion questions for this month's novel. The discussion questions cover the narrator's reliability and the ending.",
		},
		{
			Name:    "household-budget-2025.xlsx",
			Content: "Monthly household budget spreadsheet for 2025. The household budget tracks rent, utilities, groceries and savings per month.",
		},
		{
			Name:    "quarterly-sales-forecast.xlsx",
			Content: "Quarterly sales forecast by region and product line. The sales forecast projects revenue growth in the enterprise segment.",
		},
		{
			Name:    "marathon-training-plan.xlsx",
			Content: "Marathon training schedule over sixteen weeks. The training schedule builds weekly mileage with long runs every Sunday.",
		},
		{
			Name:    "inventory-warehouse-count.xlsx",
			Content: "Warehouse inventory count from the annual stocktake. The inventory count lists pallets, bin locations and damaged units.",
		},
		{
			Name:    "expense-report-travel.xlsx",
			Content: "Travel expense report for the Berlin conference trip. The expense report itemizes flights, hotel nights and per diem meals.",
		},
		{
			Name:    "project-timeline-gantt.xlsx",
			Content: "Project timeline with milestones for the data platform. The timeline marks the design freeze, the beta and general availability.",
		},
		{
			Name:    "payroll-summary-june.xlsx",
			Content: "Payroll summary for June with gross and net amounts. The payroll summary breaks out taxes, pension and benefits per employee.",
		},
		{
			Name:    "investor-pitch-deck.pptx",
			Content: "Investor pitch deck slides for the seed round. The pitch deck covers the market size, the product demo and the ask.",
		},
		{
			Name:    "team-allhands-q3.pptx",
			Content: "All hands quarterly update slides for the third quarter. The all hands update reviews goals, hiring and customer wins.",
		},
		{
			Name:    "conference-talk-golang.pptx",
			Content: "Conference talk about concurrency patterns in Go. The talk walks through worker pools, pipelines and context cancellation.",
		},
		{
			Name:    "sales-kickoff-keynote.pptx",
			Content: "Sales kickoff keynote for the new fiscal year. The kickoff keynote introduces the territory plan and the new pricing.",
		},
		{
			Name:    "security-training-deck.pptx",
			Content: "Security awareness training deck for all staff. The security training covers phishing, password managers and device encryption.",
		},
		{
			Name:    "product-demo-walkthrough.pptx",
			Content: "Product demo walkthrough slides for customer calls. The demo walkthrough shows onboarding, the dashboard and the export flow.",
		},
		{
			Name:    "retrospective-sprint-12.pptx",
			Content: "Sprint retrospective action items from sprint twelve. The retrospective action items include flaky test cleanup and fewer meetings.",
		},
		{
			Name:    "thesis-defense-slides.odp",
			Content: "Thesis defense presentation on distributed consensus. The defense presentation summarizes the protocol, the proofs and the evaluation.",
		},
		{
			Name:    "photography-workshop.odp",
			Content: "Photography workshop slides on natural lighting. The workshop covers golden hour lighting, reflectors and exposure.",
		},
		{
			Name:    "language-class-intro.odp",
			Content: "Spanish language class introduction slides. The language class covers greetings, numbers and present tense verbs.",
		},
		{
			Name:    "charity-fundraiser-plan.odp",
			Content: "Charity fundraiser planning slides for the spring gala. The fundraiser plan covers venue options, sponsors and the auction.",
		},
		{
			Name:    "astronomy-club-talk.odp",
			Content: "Astronomy club telescope talk for beginners. The telescope talk compares refractors, reflectors and mounts.",
		},
		{
			Name:    "cooking-class-menu.odp",
			Content: "Cooking class menu planning for the autumn session. The menu planning pairs a squash soup with fresh pasta and a tart.",
		},
		{
			Name:    "garden-design-proposal.odp",
			Content: "Garden landscape design proposal for the back yard. The design proposal includes raised beds, a pond and native shrubs.",
		},
		{
			Name:    "electricity-usage-log.ods",
			Content: "Monthly electricity usage readings from the meter. The electricity usage log compares this winter against last winter.",
		},
		{
			Name:    "recipe-nutrition-table.ods",
			Content: "Recipe nutrition calorie table for weekly meal prep. The nutrition table lists calories, protein and fiber per serving.",
		},
		{
			Name:    "chores-rotation-schedule.ods",
			Content: "Household chores rotation schedule for the flatmates. The chores rotation assigns kitchen, bathroom and trash duty per week.",
		},
		{
			Name:    "savings-goal-tracker.ods",
			Content: "Savings goal progress tracker for the house deposit. The savings tracker shows monthly contributions against the target.",
		},
		{
			Name:    "mileage-reimbursement.ods",
			Content: "Mileage reimbursement log for client site visits. The mileage log records odometer readings and the reimbursement rate.",
		},
		{
			Name:    "library-book-loans.ods",
			Content: "Library book loan due dates and renewals. The loan sheet tracks which books are due back and which were renewed.",
		},
		{
			Name:    "plant-watering-schedule.ods",
			Content: "Houseplant watering schedule by room and species. The watering schedule marks the ferns daily and the succulents monthly.",
		},
	}

	cases := []QueryCase{
		{
			Query:         "product roadmap planning meeting",
			ExpectedNames: []string{"meeting-notes-roadmap.txt"},
			Description:   "plain text meeting notes",
		},
		{
			Query:         "sourdough bread starter recipe",
			ExpectedNames: []string{"sourdough-bread-recipe.md"},
			Description:   "markdown recipe",
		},
		{
			Query:         "production outage postmortem",
			ExpectedNames: []string{"incident-postmortem-outage.md"},
			Description:   "incident writeup",
		},
		{
			Query:         "kubernetes deployment rollout",
			ExpectedNames: []string{"kubernetes-deployment-notes.md"},
			Description:   "ops notes",
		},
		{
			Query:         "system architecture overview",
			ExpectedNames: []string{"architecture-overview.rst"},
			Description:   "restructured text document",
		},
		{
			Query:         "release notes for version two",
			ExpectedNames: []string{"release-notes-v2.rst"},
			Description:   "release notes",
		},
		{
			Query:         "apartment lease agreement",
			ExpectedNames: []string{"lease-agreement-apartment.docx"},
			Description:   "word document",
		},
		{
			Query:         "insurance claim for water damage",
			ExpectedNames: []string{"insurance-claim-letter.docx"},
			Description:   "word letter",
		},
		{
			Query:         "monthly household budget",
			ExpectedNames: []string{"household-budget-2025.xlsx"},
			Description:   "excel spreadsheet",
		},
		{
			Query:         "quarterly sales forecast",
			ExpectedNames: []string{"quarterly-sales-forecast.xlsx"},
			Description:   "excel forecast",
		},
		{
			Query:         "marathon training schedule",
			ExpectedNames: []string{"marathon-training-plan.xlsx"},
			Description:   "excel plan",
		},
		{
			Query:         "travel expense report",
			ExpectedNames: []string{"expense-report-travel.xlsx", "mileage-reimbursement.ods"},
			Description:   "expense tracking",
		},
		{
			Query:         "investor pitch deck",
			ExpectedNames: []string{"investor-pitch-deck.pptx"},
			Description:   "powerpoint deck",
		},
		{
			Query:         "security awareness training",
			ExpectedNames: []string{"security-training-deck.pptx"},
			Description:   "powerpoint training",
		},
		{
			Query:         "sprint retrospective action items",
			ExpectedNames: []string{"retrospective-sprint-12.pptx"},
			Description:   "powerpoint retro",
		},
		{
			Query:         "thesis defense presentation",
			ExpectedNames: []string{"thesis-defense-slides.odp"},
			Description:   "opendocument slides",
		},
		{
			Query:         "monthly electricity usage readings",
			ExpectedNames: []string{"electricity-usage-log.ods"},
			Description:   "opendocument spreadsheet",
		},
		{
			Query:         "houseplant watering schedule",
			ExpectedNames: []string{"plant-watering-schedule.ods"},
			Description:   "opendocument schedule",
		},
	}

	return Corpus{Files: files, Cases: cases}
}
