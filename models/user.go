package models

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const UserTable = "arm_users"

const (
	RoleAdmin   = "admin"
	RoleOfficer = "officer"
)

// Designations an officer can hold. Pools whitelist a subset of these.
var Designations = []string{
	"Director General of Police (DGP)",
	"Superintendent of Police (SP)",
	"Deputy Commissioner of Police (DCP)",
	"Deputy Superintendent of Police (DSP)",
	"Police Inspector (PI)",
	"Sub-Inspector (SI)",
	"Police Sub-Inspector (PSI)",
	"Head Constable (HC)",
	"Police Constable (PC)",
}

type User struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	OfficerID string `gorm:"size:18;uniqueIndex;not null" json:"officerId"`
	FullName  string `gorm:"size:100;not null" json:"fullName"`
	Email     string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string `gorm:"size:100;not null" json:"-"`

	Rank          string `gorm:"size:50" json:"rank"`
	Designation   string `gorm:"size:100;not null" json:"designation"`
	PoliceStation string `gorm:"size:100" json:"policeStation"`
	Role          string `gorm:"size:20;not null;default:'officer'" json:"role"`
	IsActive      bool   `gorm:"not null;default:true" json:"isActive"`

	DateOfJoining *time.Time `json:"dateOfJoining,omitempty"`
	LastLoginAt   *time.Time `gorm:"index" json:"lastLoginAt,omitempty"`
	LastSeenAt    *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`
	LoginCount    int64      `gorm:"not null;default:0" json:"loginCount"`
	LastLoginIP   string     `gorm:"size:45" json:"-"`
	LastLoginUA   string     `gorm:"size:255" json:"-"`

	CreatedBy string    `gorm:"type:uuid" json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return UserTable }

func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

var validStateCodes = map[string]bool{
	"IN": true, "AP": true, "AR": true, "AS": true, "BR": true, "CG": true,
	"GA": true, "GJ": true, "HR": true, "HP": true, "JH": true, "KA": true,
	"KL": true, "MP": true, "MH": true, "MN": true, "ML": true, "MZ": true,
	"NL": true, "OD": true, "PB": true, "RJ": true, "SK": true, "TN": true,
	"TG": true, "TR": true, "UP": true, "UK": true, "WB": true, "AN": true,
	"CH": true, "DH": true, "DD": true, "DL": true, "JK": true, "LA": true,
	"LD": true, "PY": true,
}

var validRankCodes = []string{"PC", "HC", "ASI", "SI", "PSI", "INSP", "PI", "DSP", "SP", "DGP", "IPS"}

var yearPattern = regexp.MustCompile(`\d{4}`)

// ValidOfficerID checks the STATERANKYEARSERIAL format, e.g. MHSP20210078:
// two-letter state code, a rank code, a four-digit year, then a serial number.
func ValidOfficerID(id string) bool {
	id = strings.ToUpper(strings.TrimSpace(id))
	if len(id) < 12 || len(id) > 18 {
		return false
	}
	if !validStateCodes[id[:2]] {
		return false
	}
	hasRank := false
	for _, rank := range validRankCodes {
		if strings.Contains(id, rank) {
			hasRank = true
			break
		}
	}
	if !hasRank {
		return false
	}
	year := yearPattern.FindStringIndex(id)
	if year == nil {
		return false
	}
	y := 0
	for _, c := range id[year[0]:year[1]] {
		y = y*10 + int(c-'0')
	}
	if y < 1947 || y > time.Now().Year()+1 {
		return false
	}
	serial := id[year[1]:]
	if serial == "" {
		return false
	}
	for _, c := range serial {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// ValidDesignation reports whether d is one of the known designations.
func ValidDesignation(d string) bool {
	for _, known := range Designations {
		if known == d {
			return true
		}
	}
	return false
}
