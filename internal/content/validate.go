// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"scholarsite/internal/models"
)

// Validation limits for content fields.
const (
	maxTitleLen   = 300
	maxNameLen    = 200
	maxTextLen    = 5_000
	maxLongLen    = 100_000
	maxMessageLen = 10_000
	minYear       = 1900
)

// required records a message when s is blank and a length error when it is
// longer than limit runes.
func required(errs fieldErrors, field, label, s string, limit int) {
	if strings.TrimSpace(s) == "" {
		errs.add(field, label+" is required.")
		return
	}
	maxLen(errs, field, label, s, limit)
}

func maxLen(errs fieldErrors, field, label, s string, limit int) {
	if utf8.RuneCountInString(s) > limit {
		errs.add(field, fmt.Sprintf("%s is too long (max %d characters).", label, limit))
	}
}

// normalizeTime truncates to whole seconds in UTC so stored RFC 3339 strings
// sort chronologically.
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func validatePublication(p *models.Publication) error {
	errs := fieldErrors{}
	required(errs, "title", "Title", p.Title, maxTitleLen)
	required(errs, "authors", "Authors", p.Authors, maxTextLen)
	required(errs, "journal", "Journal", p.Journal, maxTitleLen)
	if last := time.Now().Year() + 1; p.Year < minYear || p.Year > last {
		errs.add("year", fmt.Sprintf("Year must be between %d and %d.", minYear, last))
	}
	maxLen(errs, "abstract", "Abstract", p.Abstract, maxLongLen)
	return errs.err()
}

func validateGalleryItem(g *models.GalleryItem) error {
	errs := fieldErrors{}
	required(errs, "title", "Title", g.Title, maxTitleLen)
	maxLen(errs, "description", "Description", g.Description, maxTextLen)
	if g.Category == "" {
		errs.add("category", "Category is required.")
	} else if !g.Category.Valid() {
		errs.add("category", fmt.Sprintf("Unknown category %q.", g.Category))
	}
	if g.Order < 0 {
		errs.add("order", "Order must not be negative.")
	}
	return errs.err()
}

func validateProfile(p *models.ProfileInfo) error {
	errs := fieldErrors{}
	required(errs, "name", "Name", p.Name, maxNameLen)
	required(errs, "title", "Title", p.Title, maxTitleLen)
	required(errs, "bio", "Bio", p.Bio, maxLongLen)
	for i, e := range p.Education {
		if strings.TrimSpace(e.Degree) == "" || strings.TrimSpace(e.Institution) == "" {
			errs.add(fmt.Sprintf("education[%d]", i), "Degree and institution are required.")
		}
	}
	for i, e := range p.Experience {
		if strings.TrimSpace(e.Position) == "" || strings.TrimSpace(e.Institution) == "" {
			errs.add(fmt.Sprintf("experience[%d]", i), "Position and institution are required.")
		}
	}
	for i, a := range p.Awards {
		if strings.TrimSpace(a.Title) == "" {
			errs.add(fmt.Sprintf("awards[%d]", i), "Award title is required.")
		}
	}
	return errs.err()
}

func validateEvent(e *models.Event) error {
	errs := fieldErrors{}
	required(errs, "title", "Title", e.Title, maxTitleLen)
	required(errs, "description", "Description", e.Description, maxLongLen)
	if e.StartDate.IsZero() {
		errs.add("startDate", "Start date is required.")
	} else {
		e.StartDate = normalizeTime(e.StartDate)
	}
	if e.EndDate != nil {
		end := normalizeTime(*e.EndDate)
		e.EndDate = &end
		if !e.StartDate.IsZero() && end.Before(e.StartDate) {
			errs.add("endDate", "End date must not be before the start date.")
		}
	}
	return errs.err()
}

func validateFeedback(f *models.FeedbackMessage) error {
	errs := fieldErrors{}
	required(errs, "name", "Name", f.Name, maxNameLen)
	required(errs, "subject", "Subject", f.Subject, maxTitleLen)
	required(errs, "message", "Message", f.Message, maxMessageLen)
	if strings.TrimSpace(f.Email) == "" {
		errs.add("email", "Email is required.")
	} else if addr, err := mail.ParseAddress(f.Email); err != nil || addr.Address != f.Email {
		errs.add("email", "Email is not a valid address.")
	}
	return errs.err()
}

func validatePortfolio(p *models.PortfolioContent) error {
	errs := fieldErrors{}
	for i, s := range p.Sections {
		if strings.TrimSpace(s.Title) == "" {
			errs.add(fmt.Sprintf("sections[%d].title", i), "Section title is required.")
		}
		for j, sub := range s.Subsections {
			field := fmt.Sprintf("sections[%d].subsections[%d]", i, j)
			if strings.TrimSpace(sub.Title) == "" {
				errs.add(field+".title", "Subsection title is required.")
			}
			if !sub.Type.Valid() {
				errs.add(field+".type", fmt.Sprintf("Unknown subsection type %q.", sub.Type))
			}
		}
	}
	return errs.err()
}

func validateCooperation(c *models.CooperationContent) error {
	errs := fieldErrors{}
	for i, a := range c.AcademicCollaborations {
		if strings.TrimSpace(a.Institution) == "" {
			errs.add(fmt.Sprintf("academicCollaborations[%d].institution", i), "Institution is required.")
		}
	}
	for i, p := range c.IndustryPartnerships {
		if strings.TrimSpace(p.Company) == "" {
			errs.add(fmt.Sprintf("industryPartnerships[%d].company", i), "Company is required.")
		}
	}
	for i, n := range c.ResearchNetworks {
		if strings.TrimSpace(n.Name) == "" {
			errs.add(fmt.Sprintf("researchNetworks[%d].name", i), "Network name is required.")
		}
		if n.Members < 0 {
			errs.add(fmt.Sprintf("researchNetworks[%d].members", i), "Members must not be negative.")
		}
	}
	maxLen(errs, "collaborationOpportunities", "Collaboration opportunities", c.CollaborationOpportunities, maxLongLen)
	return errs.err()
}

func validateFoundation(f *models.FoundationContent) error {
	errs := fieldErrors{}
	maxLen(errs, "mission", "Mission", f.Mission, maxLongLen)
	for i, p := range f.Programs {
		if strings.TrimSpace(p.Title) == "" {
			errs.add(fmt.Sprintf("programs[%d].title", i), "Program title is required.")
		}
	}
	for i, e := range f.UpcomingEvents {
		if strings.TrimSpace(e.Title) == "" {
			errs.add(fmt.Sprintf("upcomingEvents[%d].title", i), "Event title is required.")
		}
	}
	return errs.err()
}

func validateContact(c *models.ContactContent) error {
	errs := fieldErrors{}
	for i, info := range c.ContactInfo {
		if strings.TrimSpace(info.Title) == "" {
			errs.add(fmt.Sprintf("contactInfo[%d].title", i), "Title is required.")
		}
	}
	for i, loc := range c.OfficeLocations {
		if strings.TrimSpace(loc.Name) == "" {
			errs.add(fmt.Sprintf("officeLocations[%d].name", i), "Office name is required.")
		}
	}
	return errs.err()
}
