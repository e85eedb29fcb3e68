package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tambo-herd/internal/domain/aggregate"
	"tambo-herd/internal/domain/event"
)

var testOpts = Options{
	Now:             time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
	RecordedBy:      "vet-1",
	EstablishmentID: "tambo-sur",
}

func TestParseFullWorksheet(t *testing.T) {
	text := `
ID: 10
RP: 5001
Raza: Jersey
Categoria: Vaquillona
Estado: Preñada
Partos: 2
FechaNac: 2022-03-15
Ultima: 2025-09-01
FPP: 2026-11-05
Senas: mancha blanca en el lomo
Eventos:
- 2026-01-10 |tipo: inseminacion|toro: HOL-442|servicio: 2|
- 2026-03-10 |tipo: tacto|resultado: Preñada|mesesGesta: 2|
`

	ws, err := Parse(text, testOpts)
	require.NoError(t, err)
	require.Len(t, ws.Animals, 1)
	require.Len(t, ws.Events, 2)

	a := ws.Animals[0]
	assert.Equal(t, "10", a.ID)
	assert.Equal(t, "5001", a.RP)
	assert.Equal(t, aggregate.BreedJersey, a.Breed)
	assert.Equal(t, aggregate.CategoryHeifer, a.Category)
	assert.Equal(t, aggregate.ReproPregnant, a.Reproductive)
	assert.Equal(t, 2, a.TotalCalvings)
	assert.Equal(t, time.Date(2022, 3, 15, 0, 0, 0, 0, time.UTC), a.BirthDate)
	assert.Equal(t, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), a.LastCalving)
	assert.Equal(t, time.Date(2026, 11, 5, 0, 0, 0, 0, time.UTC), a.ProbableCalving)
	assert.Equal(t, "mancha blanca en el lomo", a.VisualNote)
	assert.Equal(t, "tambo-sur", a.EstablishmentID)

	svc, ok := ws.Events[0].(*event.InseminationPerformed)
	require.True(t, ok)
	assert.Equal(t, "10", svc.AnimalID)
	assert.Equal(t, "HOL-442", svc.SireCode)
	assert.Equal(t, 2, svc.ServiceNumber)
	assert.Equal(t, "vet-1", svc.RecordedBy)

	check, ok := ws.Events[1].(*event.PregnancyCheckRecorded)
	require.True(t, ok)
	assert.Equal(t, event.CheckPregnant, check.Result)
	assert.Equal(t, 2, check.MonthsGestation)
}

func TestParseMultipleBlocks(t *testing.T) {
	text := `
ID: 10
Raza: Holando
Eventos:
- 2026-08-29 |tipo: celo|

ID: 11
Estado: Seca
`
	ws, err := Parse(text, testOpts)
	require.NoError(t, err)
	require.Len(t, ws.Animals, 2)
	require.Len(t, ws.Events, 1)

	assert.Equal(t, "10", ws.Events[0].AggregateID())
	assert.Equal(t, aggregate.Dry, ws.Animals[1].Lactation)
	assert.Equal(t, aggregate.ReproDry, ws.Animals[1].Reproductive)
}

func TestParseBareIDAndHashLines(t *testing.T) {
	ws, err := Parse("#12\n45\n", testOpts)
	require.NoError(t, err)
	require.Len(t, ws.Animals, 2)
	assert.Equal(t, "12", ws.Animals[0].ID)
	assert.Equal(t, "45", ws.Animals[1].ID)
}

func TestParseSimpleCommaList(t *testing.T) {
	ws, err := Parse("101, 102; 103", testOpts)
	require.NoError(t, err)
	require.Len(t, ws.Animals, 3)
	assert.Equal(t, "101", ws.Animals[0].ID)
	assert.Equal(t, "103", ws.Animals[2].ID)
}

func TestParseTreatmentDerivesReleaseDate(t *testing.T) {
	text := `
ID: 10
Eventos:
- 2026-08-25 |tipo: sanidad|detalle: mastitis|diasRetiro: 4|
`
	ws, err := Parse(text, testOpts)
	require.NoError(t, err)
	require.Len(t, ws.Events, 1)

	treatment, ok := ws.Events[0].(*event.HealthTreatmentApplied)
	require.True(t, ok)
	assert.Equal(t, 4, treatment.WithholdingDays)
	assert.Equal(t, "mastitis", treatment.Note)
	assert.Equal(t, time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC), treatment.ReleaseDate)
}

func TestParseMilkTest(t *testing.T) {
	text := `
ID: 10
Eventos:
- 2026-08-20 |tipo: controlLechero|litros: 28.5|grasa: 3.9|proteina: 3.3|
`
	ws, err := Parse(text, testOpts)
	require.NoError(t, err)

	milk, ok := ws.Events[0].(*event.MilkTestRecorded)
	require.True(t, ok)
	assert.Equal(t, 28.5, milk.Liters)
	assert.Equal(t, 3.9, milk.FatPct)
	assert.Equal(t, 3.3, milk.ProteinPct)
}

func TestParseRejectsUnknownEventType(t *testing.T) {
	text := `
ID: 10
Eventos:
- 2026-08-20 |tipo: vacunacion|
`
	_, err := Parse(text, testOpts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vacunacion")
}

func TestParseRejectsBadEventDate(t *testing.T) {
	text := `
ID: 10
Eventos:
- pronto |tipo: celo|
`
	_, err := Parse(text, testOpts)
	require.Error(t, err)
}

func TestParseRejectsEmptyWorksheet(t *testing.T) {
	_, err := Parse("   \n  ", testOpts)
	require.Error(t, err)
}

func TestParseIgnoresSeparatorsAndFences(t *testing.T) {
	text := "```\nID: 10\n---\nRP: 7\n```"
	ws, err := Parse(text, testOpts)
	require.NoError(t, err)
	require.Len(t, ws.Animals, 1)
	assert.Equal(t, "7", ws.Animals[0].RP)
}
