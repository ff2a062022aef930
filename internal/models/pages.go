// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// SubsectionType selects how a portfolio subsection is rendered.
type SubsectionType string

const (
	SubsectionText        SubsectionType = "text"
	SubsectionPublication SubsectionType = "publication"
	SubsectionProject     SubsectionType = "project"
	SubsectionAward       SubsectionType = "award"
)

// Valid reports whether t is a known subsection type.
func (t SubsectionType) Valid() bool {
	switch t {
	case SubsectionText, SubsectionPublication, SubsectionProject, SubsectionAward:
		return true
	}
	return false
}

// SubsectionMetadata holds the type-dependent extras of a subsection:
// authors/journal/year/doi for publications, period for projects and
// organization/year for awards.
type SubsectionMetadata struct {
	Authors      string `json:"authors,omitempty"`
	Journal      string `json:"journal,omitempty"`
	Year         int    `json:"year,omitempty"`
	DOI          string `json:"doi,omitempty"`
	Period       string `json:"period,omitempty"`
	Organization string `json:"organization,omitempty"`
}

type Subsection struct {
	Title    string              `json:"title"`
	Content  string              `json:"content"`
	Type     SubsectionType      `json:"type"`
	Order    int                 `json:"order"`
	Metadata *SubsectionMetadata `json:"metadata,omitempty"`
}

type Section struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	IconName    string       `json:"iconName"`
	Order       int          `json:"order"`
	Subsections []Subsection `json:"subsections"`
}

// PortfolioContent is the single document behind the portfolio page.
type PortfolioContent struct {
	Meta
	Sections []Section `json:"sections"`
}

type AcademicCollaboration struct {
	Institution   string `json:"institution"`
	Description   string `json:"description"`
	ContactPerson string `json:"contactPerson,omitempty"`
}

type IndustryPartnership struct {
	Company     string `json:"company"`
	Description string `json:"description"`
	Year        string `json:"year"`
}

type ResearchNetwork struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Members     int    `json:"members"`
}

// CooperationContent is the single document behind the cooperation page.
type CooperationContent struct {
	Meta
	AcademicCollaborations     []AcademicCollaboration `json:"academicCollaborations"`
	IndustryPartnerships       []IndustryPartnership   `json:"industryPartnerships"`
	ResearchNetworks           []ResearchNetwork       `json:"researchNetworks"`
	CollaborationOpportunities string                  `json:"collaborationOpportunities"`
}

type Program struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Beneficiaries string `json:"beneficiaries"`
	IconName      string `json:"iconName"`
}

type ImpactStat struct {
	Number      string `json:"number"`
	Description string `json:"description"`
}

type UpcomingEvent struct {
	Title    string `json:"title"`
	Date     string `json:"date"`
	Location string `json:"location"`
}

// FoundationContent is the single document behind the foundation page.
type FoundationContent struct {
	Meta
	Mission        string          `json:"mission"`
	Programs       []Program       `json:"programs"`
	ImpactStats    []ImpactStat    `json:"impactStats"`
	UpcomingEvents []UpcomingEvent `json:"upcomingEvents"`
}

type ContactInfo struct {
	Title    string   `json:"title"`
	IconName string   `json:"iconName"`
	Details  []string `json:"details"`
}

type OfficeLocation struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Hours   string `json:"hours"`
}

// ContactContent is the single document behind the contact page.
type ContactContent struct {
	Meta
	ContactInfo     []ContactInfo    `json:"contactInfo"`
	OfficeLocations []OfficeLocation `json:"officeLocations"`
}

// Empty page documents: every list is present and empty, every string blank.

func NewPortfolioContent() PortfolioContent {
	return PortfolioContent{Sections: []Section{}}
}

func NewCooperationContent() CooperationContent {
	return CooperationContent{
		AcademicCollaborations: []AcademicCollaboration{},
		IndustryPartnerships:   []IndustryPartnership{},
		ResearchNetworks:       []ResearchNetwork{},
	}
}

func NewFoundationContent() FoundationContent {
	return FoundationContent{
		Programs:       []Program{},
		ImpactStats:    []ImpactStat{},
		UpcomingEvents: []UpcomingEvent{},
	}
}

func NewContactContent() ContactContent {
	return ContactContent{
		ContactInfo:     []ContactInfo{},
		OfficeLocations: []OfficeLocation{},
	}
}
