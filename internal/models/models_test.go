package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPatientAge(t *testing.T) {
	now := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		birthDate string
		want      int
	}{
		{"birthday already passed this year", "2020-03-15", 6},
		{"birthday later this year", "2020-11-02", 5},
		{"birthday today", "2020-08-28", 6},
		{"infant", "2026-01-10", 0},
		{"no birth date recorded", "", -1},
		{"unparseable birth date", "15/03/2020", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Patient{BirthDate: tt.birthDate}
			assert.Equal(t, tt.want, p.Age(now))
		})
	}
}

func TestPatientFullName(t *testing.T) {
	p := Patient{FirstName: "Lina", LastName: "Haddad"}
	assert.Equal(t, "Lina Haddad", p.FullName())
}

func TestComputeBMI(t *testing.T) {
	assert.InDelta(t, 16.0, ComputeBMI(100, 16), 0.001)
	assert.InDelta(t, 17.3, ComputeBMI(120, 25), 0.1)
	assert.Zero(t, ComputeBMI(0, 20))
	assert.Zero(t, ComputeBMI(-50, 20))
}

func TestFamilyTotalMembers(t *testing.T) {
	f := Family{
		ParentID: primitive.NewObjectID(),
		Children: []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()},
	}
	assert.Equal(t, 3, f.TotalMembers())

	empty := Family{}
	assert.Equal(t, 0, empty.TotalMembers())
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleAdmin))
	assert.True(t, ValidRole(RoleDoctor))
	assert.True(t, ValidRole(RoleParent))
	assert.False(t, ValidRole("superadmin"))
	assert.False(t, ValidRole(""))
	assert.False(t, ValidRole("Doctor"))
}
