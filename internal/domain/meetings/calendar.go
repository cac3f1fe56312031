package meetings

import (
	"strings"
	"time"
)

const (
	defaultMeetingLength = 2 * time.Hour
	icsTimeLayout        = "20060102T150405Z"
)

var icsEscaper = strings.NewReplacer(`\`, `\\`, ",", `\,`, ";", `\;`, "\n", `\n`)

// ICS renders the meeting as a single VEVENT calendar. DTEND defaults to two
// hours after the start.
func ICS(meeting *Meeting, clubName string, now time.Time) string {
	end := meeting.ScheduledAt.Add(defaultMeetingLength)
	if meeting.EndsAt != nil {
		end = *meeting.EndsAt
	}

	description := "Book club: " + clubName
	if meeting.ClubBook != nil && meeting.ClubBook.Book != nil {
		description += "\n\nBook: " + meeting.ClubBook.Book.Title
	}
	location := ""
	if meeting.Location != nil {
		location = *meeting.Location
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//book-club-go//Book Club//EN",
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		"UID:meeting-" + meeting.ID + "@book-club",
		"DTSTAMP:" + now.UTC().Format(icsTimeLayout),
		"DTSTART:" + meeting.ScheduledAt.UTC().Format(icsTimeLayout),
		"DTEND:" + end.UTC().Format(icsTimeLayout),
		"SUMMARY:" + icsEscaper.Replace(meeting.Title),
		"LOCATION:" + icsEscaper.Replace(location),
		"DESCRIPTION:" + icsEscaper.Replace(description),
		"END:VEVENT",
		"END:VCALENDAR",
	}
	return strings.Join(lines, "\r\n") + "\r\n"
}

// CalendarFilename names the .ics download after the meeting date.
func CalendarFilename(meeting *Meeting) string {
	return "book-club-meeting-" + meeting.ScheduledAt.UTC().Format("2006-01-02") + ".ics"
}
