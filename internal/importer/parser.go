package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"tambo-herd/internal/domain/aggregate"
	"tambo-herd/internal/domain/event"
	"tambo-herd/internal/domain/herd"
)

// Package importer parses the free-text veterinary worksheets the herd was
// historically kept on. The worksheets use Spanish field names; the parser
// translates them into domain values.
//
// A worksheet is a sequence of animal blocks. A block opens with an ID line
// ("ID: 10", "#10" or a bare tag), continues with "key: value" attribute
// lines and an optional "Eventos:" section whose entries look like
//
//	- 2025-12-27 |tipo: celo|detalle: repite|
//
// A plain comma or newline separated list of tags is also accepted and
// registers the animals with defaults.

// Options carries the context the worksheet itself does not state.
type Options struct {
	Now             time.Time
	RecordedBy      string
	EstablishmentID string
}

// Worksheet is the parsed result: animals ready to register and events ready
// to append, in worksheet order.
type Worksheet struct {
	Animals []aggregate.AnimalParams
	Events  []event.DomainEvent
}

var idLinePattern = regexp.MustCompile(`^(?:[Ii][Dd]:?\s*|#\s*)?(\w+)$`)

// Parse reads one worksheet. It returns an error when no animal can be
// detected or when a stated date or event type cannot be understood.
func Parse(text string, opts Options) (*Worksheet, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	ws := &Worksheet{}
	var current *aggregate.AnimalParams
	inEvents := false

	flush := func() {
		if current != nil {
			ws.Animals = append(ws.Animals, *current)
		}
	}

	for n, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "---") || strings.HasPrefix(line, "```") {
			continue
		}

		lower := strings.ToLower(line)
		idMatch := idLinePattern.FindStringSubmatch(line)
		bareID := idMatch != nil && !strings.Contains(line, ":") && !strings.Contains(line, "|")
		explicitID := strings.HasPrefix(lower, "id:")

		if explicitID || bareID {
			id := ""
			if idMatch != nil {
				id = idMatch[1]
			} else {
				_, value, _ := strings.Cut(line, ":")
				id = strings.TrimSpace(value)
			}
			if id == "" {
				continue
			}
			flush()
			current = &aggregate.AnimalParams{
				ID:              id,
				BirthDate:       opts.Now,
				EstablishmentID: opts.EstablishmentID,
			}
			inEvents = false
			continue
		}
		if current == nil {
			continue
		}

		if inEvents && strings.HasPrefix(line, "-") {
			ev, err := parseEventLine(current.ID, strings.TrimSpace(line[1:]), opts)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", n+1, err)
			}
			ws.Events = append(ws.Events, ev)
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "rp":
			current.RP = value
		case "raza":
			current.Breed = parseBreed(value)
		case "categoria", "categoría":
			current.Category = parseCategory(value)
		case "estado":
			applyStateWord(current, value)
		case "partos":
			current.TotalCalvings, _ = strconv.Atoi(value)
		case "fechanac":
			if ts, err := herd.ParseTimestamp(value); err == nil {
				current.BirthDate = ts
			}
		case "ultima", "última":
			if ts, err := herd.ParseTimestamp(value); err == nil {
				current.LastCalving = ts
			}
		case "fpp", "prox", "próx":
			if ts, err := herd.ParseTimestamp(value); err == nil {
				current.ProbableCalving = ts
			}
		case "senas", "señas":
			current.VisualNote = value
		case "padre":
			current.Sire = value
		case "madre":
			current.Dam = value
		case "eventos":
			inEvents = true
		}
	}
	flush()

	// A worksheet with no recognizable blocks may still be a plain tag list.
	if len(ws.Animals) == 0 && strings.TrimSpace(text) != "" {
		for _, id := range regexp.MustCompile(`[\n,;]+`).Split(text, -1) {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			ws.Animals = append(ws.Animals, aggregate.AnimalParams{
				ID:              id,
				BirthDate:       opts.Now,
				EstablishmentID: opts.EstablishmentID,
			})
		}
	}
	if len(ws.Animals) == 0 {
		return nil, fmt.Errorf("no animals detected in worksheet")
	}
	return ws, nil
}

func parseBreed(value string) aggregate.Breed {
	switch strings.ToLower(value) {
	case "holando":
		return aggregate.BreedHolando
	case "jersey":
		return aggregate.BreedJersey
	case "cruza":
		return aggregate.BreedCruza
	}
	return aggregate.Breed(value)
}

func parseCategory(value string) aggregate.Category {
	switch strings.ToLower(value) {
	case "vaca":
		return aggregate.CategoryCow
	case "vaquillona":
		return aggregate.CategoryHeifer
	case "ternera":
		return aggregate.CategoryCalf
	}
	return aggregate.Category(value)
}

// applyStateWord resolves the overloaded "estado" field: the worksheets used
// one column for both lactation and reproductive status.
func applyStateWord(p *aggregate.AnimalParams, value string) {
	switch strings.ToLower(value) {
	case "lactancia":
		p.Lactation = aggregate.Lactating
	case "seca":
		p.Lactation = aggregate.Dry
		p.Reproductive = aggregate.ReproDry
	case "vacía", "vacia":
		p.Reproductive = aggregate.ReproOpen
	case "inseminada":
		p.Reproductive = aggregate.ReproInseminated
	case "preñada", "prenada":
		p.Reproductive = aggregate.ReproPregnant
	}
}

// parseEventLine reads one "- date |prop: value|..." entry.
func parseEventLine(animalID, entry string, opts Options) (event.DomainEvent, error) {
	datePart := entry
	propsPart := ""
	if i := strings.Index(entry, "|"); i >= 0 {
		datePart = strings.TrimSpace(entry[:i])
		propsPart = entry[i:]
	}
	datePart = strings.TrimSuffix(datePart, ":")

	ts := opts.Now
	if datePart != "" {
		parsed, err := herd.ParseTimestamp(datePart)
		if err != nil {
			return nil, fmt.Errorf("unreadable event date %q", datePart)
		}
		ts = parsed
	}

	props := map[string]string{}
	for _, p := range strings.Split(propsPart, "|") {
		if k, v, ok := strings.Cut(p, ":"); ok {
			props[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}

	note := props["detalle"]
	if note == "" {
		note = "imported from worksheet"
	}

	tipo := props["tipo"]
	if tipo == "" {
		tipo = "celo"
	}
	switch tipo {
	case "celo":
		return &event.HeatDetected{
			AnimalID: animalID, Timestamp: ts, Note: note,
			RecordedBy: opts.RecordedBy, EstablishmentID: opts.EstablishmentID,
		}, nil

	case "inseminacion", "inseminación":
		serviceNumber, _ := strconv.Atoi(props["servicio"])
		return &event.InseminationPerformed{
			AnimalID: animalID, Timestamp: ts, Note: note,
			SireCode: props["toro"], ServiceNumber: serviceNumber,
			RecordedBy: opts.RecordedBy, EstablishmentID: opts.EstablishmentID,
		}, nil

	case "tacto":
		result := event.CheckOpen
		switch strings.ToLower(props["resultado"]) {
		case "preñada", "prenada", string(event.CheckPregnant):
			result = event.CheckPregnant
		}
		months, _ := strconv.Atoi(props["mesesGesta"])
		return &event.PregnancyCheckRecorded{
			AnimalID: animalID, Timestamp: ts, Note: note,
			Result: result, MonthsGestation: months,
			RecordedBy: opts.RecordedBy, EstablishmentID: opts.EstablishmentID,
		}, nil

	case "parto":
		return &event.CalvingRecorded{
			AnimalID: animalID, Timestamp: ts, Note: note,
			RecordedBy: opts.RecordedBy, EstablishmentID: opts.EstablishmentID,
		}, nil

	case "sanidad":
		days, _ := strconv.Atoi(props["diasRetiro"])
		ev := &event.HealthTreatmentApplied{
			AnimalID: animalID, Timestamp: ts, Note: note,
			Medication: props["medicamento"], WithholdingDays: days,
			RecordedBy: opts.RecordedBy, EstablishmentID: opts.EstablishmentID,
		}
		if release, err := herd.ParseTimestamp(props["fechaLiberacion"]); err == nil {
			ev.ReleaseDate = release
		} else {
			ev.ReleaseDate = ev.Release()
		}
		return ev, nil

	case "controlLechero":
		liters, _ := strconv.ParseFloat(props["litros"], 64)
		fat, _ := strconv.ParseFloat(props["grasa"], 64)
		protein, _ := strconv.ParseFloat(props["proteina"], 64)
		return &event.MilkTestRecorded{
			AnimalID: animalID, Timestamp: ts, Note: note,
			Liters: liters, FatPct: fat, ProteinPct: protein,
			RecordedBy: opts.RecordedBy, EstablishmentID: opts.EstablishmentID,
		}, nil

	case "secado":
		return &event.DryOffRecorded{
			AnimalID: animalID, Timestamp: ts, Note: note,
			RecordedBy: opts.RecordedBy, EstablishmentID: opts.EstablishmentID,
		}, nil
	}
	return nil, fmt.Errorf("unknown event type %q", tipo)
}
