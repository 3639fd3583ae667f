package assistant

import (
	"fmt"
	"regexp"
	"strings"

	"campusbook/internal/domain/bookings"
	"campusbook/internal/domain/offices"
)

const displayDateLayout = "January 2, 2006"

// topicReply answers questions about one kind of office. Lookup keywords are
// matched against office names and descriptions.
type topicReply struct {
	pattern  *regexp.Regexp
	lookup   []string
	services string
	fallback string
	// bookHint is the office name to suggest when none is configured; empty
	// means suggest the matched office's own name.
	bookHint string
}

type responder struct {
	greeting *regexp.Regexp
	status   *regexp.Regexp
	topics   []topicReply
	hours    *regexp.Regexp
	howTo    *regexp.Regexp
	list     *regexp.Regexp
}

func words(ws ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(` + strings.Join(ws, "|") + `)\b`)
}

var rules = responder{
	greeting: words("hi", "hello", "hey", "halo", "kamusta", "good morning", "good afternoon", "good evening", "mabuhay"),
	status:   words("status", "check", "my appointment", "upcoming", "pending", "approved"),
	topics: []topicReply{
		{
			pattern:  words("transcript", "diploma", "certificate", "records", "grades", "tog", "tor", "form 137", "form 138"),
			lookup:   []string{"registrar", "record", "transcript"},
			services: "transcripts, diplomas, certificates, and student records",
			fallback: "Registrar's Office",
			bookHint: "Registrar",
		},
		{
			pattern:  words("payment", "pay", "tuition", "fee", "financial", "money", "cash", "installment", "bayad"),
			lookup:   []string{"cashier", "accounting", "finance", "payment", "tuition"},
			services: "payment, tuition, and financial matters",
			fallback: "Cashier's Office",
		},
		{
			pattern:  words("guidance", "counseling", "counselor", "mental health", "stress", "anxiety", "depression", "advice", "help"),
			lookup:   []string{"guidance", "counseling", "counselor"},
			services: "guidance and counseling services",
			fallback: "Guidance Office",
			bookHint: "Guidance",
		},
		{
			pattern:  words("library", "book", "borrow", "return", "research", "study", "libro"),
			lookup:   []string{"library"},
			services: "library services (borrowing books, research assistance, study spaces)",
			fallback: "Library",
			bookHint: "Library",
		},
		{
			pattern:  words("clinic", "health", "medical", "doctor", "nurse", "sick", "illness", "medicine", "gamot"),
			lookup:   []string{"clinic", "health", "medical"},
			services: "health and medical concerns",
			fallback: "Clinic",
			bookHint: "Clinic",
		},
	},
	hours: words("hours", "time", "when", "open", "close", "available", "schedule", "oras"),
	howTo: words("how", "book", "appointment", "schedule", "reserve", "process", "steps", "paano", "mag-book"),
	list:  words("office", "offices", "list", "what", "which", "available", "options", "ano", "saan"),
}

// respond picks the first rule that matches message. recent is newest first.
func (r responder) respond(message string, list []offices.Office, recent []bookings.UserBooking) string {
	switch {
	case r.greeting.MatchString(message):
		return greetingReply(recent)
	case r.status.MatchString(message):
		return statusReply(recent)
	}

	for _, t := range r.topics {
		if t.pattern.MatchString(message) {
			return t.reply(list)
		}
	}

	switch {
	case r.hours.MatchString(message):
		return "Office hours are typically **9:00 AM to 4:00 PM**, Monday to Friday.\n\n" +
			"**I can book an appointment for you right now!** Just tell me which office you need and I'll find the best available time."
	case r.howTo.MatchString(message):
		return howToReply
	case r.list.MatchString(message):
		return officeListReply(list)
	}
	return defaultReply(message)
}

func greetingReply(recent []bookings.UserBooking) string {
	var b strings.Builder
	b.WriteString("Hello! 👋 I'm your assistant for the appointment booking system.\n\n")
	if len(recent) > 0 {
		last := recent[0]
		fmt.Fprintf(&b, "I see you have an upcoming appointment with **%s** on %s at %s.\n\n",
			last.OfficeName, last.Date.Format(displayDateLayout), last.Time.Format12())
	}
	b.WriteString("I can help you:\n")
	b.WriteString("• Find the right office for your concern\n")
	b.WriteString("• Understand the appointment booking process\n")
	b.WriteString("• **Book appointments automatically for you**\n")
	b.WriteString("• Answer questions about office services\n\n")
	b.WriteString("What can I help you with today?")
	return b.String()
}

func statusReply(recent []bookings.UserBooking) string {
	if len(recent) == 0 {
		return "You don't have any appointments yet. Would you like me to help you book one?"
	}

	var b strings.Builder
	b.WriteString("Here are your recent appointments:\n\n")
	for _, apt := range recent {
		fmt.Fprintf(&b, "%s **%s**\n", statusIcon(apt.Status), apt.OfficeName)
		fmt.Fprintf(&b, "   Date: %s\n", apt.Date.Format(displayDateLayout))
		fmt.Fprintf(&b, "   Time: %s\n", apt.Time.Format12())
		fmt.Fprintf(&b, "   Status: %s\n\n", apt.Status)
	}
	b.WriteString("You can track all your appointments in the dashboard!")
	return b.String()
}

func statusIcon(status string) string {
	switch strings.ToLower(status) {
	case "approved", "confirmed":
		return "✅"
	case "pending":
		return "⏳"
	}
	return "📋"
}

func (t topicReply) reply(list []offices.Office) string {
	office := matchOffice(list, t.lookup)
	if office == nil {
		hint := t.bookHint
		if hint == "" {
			hint = t.fallback
		}
		return fmt.Sprintf("For %s, you'll need to contact the **%s**.\n\n", t.services, t.fallback) +
			fmt.Sprintf("**I can book this for you!** Just say 'book me with %s' and I'll schedule it automatically.", hint)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "For **%s**, you should book with the **%s**.\n\n", t.services, office.Name)
	if office.Description != nil && *office.Description != "" {
		fmt.Fprintf(&b, "They handle: %s.\n\n", *office.Description)
	}
	hint := t.bookHint
	if hint == "" {
		hint = office.Name
	}
	fmt.Fprintf(&b, "**Would you like me to book an appointment for you?** Just say 'book me with %s' and I'll find the best available time!", hint)
	return b.String()
}

// matchOffice returns the first office whose name or description contains
// any of the keywords.
func matchOffice(list []offices.Office, keywords []string) *offices.Office {
	for i := range list {
		name := strings.ToLower(list[i].Name)
		desc := ""
		if list[i].Description != nil {
			desc = strings.ToLower(*list[i].Description)
		}
		for _, kw := range keywords {
			if strings.Contains(name, kw) || strings.Contains(desc, kw) {
				return &list[i]
			}
		}
	}
	return nil
}

const howToReply = "Here's how to book an appointment:\n\n" +
	"**Option 1: I can book for you!** 🚀\n" +
	"Just say: 'Book me with [Office Name]' or 'Schedule an appointment with [Office Name]'\n" +
	"I'll automatically find the best available time and book it for you!\n\n" +
	"**Option 2: Manual booking**\n" +
	"1. Select the office from the menu\n" +
	"2. Choose your preferred date\n" +
	"3. Select an available time slot\n" +
	"4. Fill in your concern and submit\n\n" +
	"Which would you prefer?"

func officeListReply(list []offices.Office) string {
	if len(list) == 0 {
		return "Please select an office from the dropdown menu to see available options.\n\n" +
			"**Or tell me which office you need and I'll book it for you!**"
	}

	var b strings.Builder
	b.WriteString("Here are the available offices:\n\n")
	for _, o := range list {
		fmt.Fprintf(&b, "• **%s**", o.Name)
		if o.Location != nil && *o.Location != "" {
			fmt.Fprintf(&b, " - %s", *o.Location)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n**I can book any of these for you!** Just say 'book me with [Office Name]' and I'll schedule it automatically.")
	return b.String()
}

func defaultReply(message string) string {
	return fmt.Sprintf("I understand you're asking about: %q\n\n", message) +
		"I can help you with:\n" +
		"• Finding the right office for your concern\n" +
		"• Understanding how to book appointments\n" +
		"• **Booking appointments automatically for you**\n" +
		"• Information about office hours and services\n\n" +
		"**Try saying:**\n" +
		"• 'Book me with Registrar' → I'll schedule it automatically\n" +
		"• 'I need my transcript' → I'll direct you and offer to book\n" +
		"• 'Check my appointments' → I'll show your booking history"
}
