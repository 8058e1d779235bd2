// Package seed loads the reference geography into the relational store.
package seed

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"gopkg.in/yaml.v3"
)

//go:embed geo.yaml
var geoYAML []byte

type Geo struct {
	Provinces []Province `yaml:"provinces"`
}

type Province struct {
	ID                 int64          `yaml:"id"`
	Name               string         `yaml:"name"`
	ElectoralDistricts []District     `yaml:"electoralDistricts"`
	Municipalities     []Municipality `yaml:"municipalities"`
}

type District struct {
	ID                int64  `yaml:"id"`
	Name              string `yaml:"name"`
	LevelOfPoliticsID int64  `yaml:"levelOfPoliticsId"`
}

type Municipality struct {
	ID          int64        `yaml:"id"`
	Name        string       `yaml:"name"`
	PostalCodes []PostalCode `yaml:"postalCodes"`
}

type PostalCode struct {
	ID                  int64  `yaml:"id"`
	Name                string `yaml:"name"`
	Code                string `yaml:"code"`
	ElectoralDistrictID int64  `yaml:"electoralDistrictId"`
}

// Load parses the embedded geography document
func Load() (*Geo, error) {
	return Parse(geoYAML)
}

// Parse decodes a geography document and checks that every postal code
// points at a district of its own province.
func Parse(data []byte) (*Geo, error) {
	var geo Geo
	if err := yaml.Unmarshal(data, &geo); err != nil {
		return nil, fmt.Errorf("failed to parse geo seed: %w", err)
	}

	for _, p := range geo.Provinces {
		districts := make(map[int64]bool, len(p.ElectoralDistricts))
		for _, d := range p.ElectoralDistricts {
			districts[d.ID] = true
		}
		for _, m := range p.Municipalities {
			for _, pc := range m.PostalCodes {
				if !districts[pc.ElectoralDistrictID] {
					return nil, fmt.Errorf("postal code %s references district %d outside %s",
						pc.Code, pc.ElectoralDistrictID, p.Name)
				}
			}
		}
	}
	return &geo, nil
}

// Counts reports how many rows of each kind the document holds
func (g *Geo) Counts() (provinces, municipalities, districts, postalCodes int) {
	provinces = len(g.Provinces)
	for _, p := range g.Provinces {
		districts += len(p.ElectoralDistricts)
		municipalities += len(p.Municipalities)
		for _, m := range p.Municipalities {
			postalCodes += len(m.PostalCodes)
		}
	}
	return
}

// Beginner is satisfied by *pgxpool.Pool and *pgx.Conn
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Apply upserts the geography in one transaction. Running it twice leaves
// the tables unchanged.
func Apply(ctx context.Context, db Beginner, geo *Geo) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, p := range geo.Provinces {
		batch.Queue(`INSERT INTO province_and_territory (id, name) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`, p.ID, p.Name)
		for _, d := range p.ElectoralDistricts {
			batch.Queue(`INSERT INTO electoral_district (id, name, province_territory_id, level_of_politics_id)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name,
					province_territory_id = EXCLUDED.province_territory_id,
					level_of_politics_id = EXCLUDED.level_of_politics_id`,
				d.ID, d.Name, p.ID, d.LevelOfPoliticsID)
		}
		for _, m := range p.Municipalities {
			batch.Queue(`INSERT INTO municipality (id, name, province_territory_id) VALUES ($1, $2, $3)
				ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name,
					province_territory_id = EXCLUDED.province_territory_id`,
				m.ID, m.Name, p.ID)
			for _, pc := range m.PostalCodes {
				batch.Queue(`INSERT INTO postal_code (id, name, code, municipality_id, electoral_district_id)
					VALUES ($1, $2, $3, $4, $5)
					ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, code = EXCLUDED.code,
						municipality_id = EXCLUDED.municipality_id,
						electoral_district_id = EXCLUDED.electoral_district_id`,
					pc.ID, pc.Name, pc.Code, m.ID, pc.ElectoralDistrictID)
			}
		}
	}

	// Explicit ids bypass the sequences; move them past the seeded rows.
	for _, table := range []string{"province_and_territory", "electoral_district", "municipality", "postal_code"} {
		batch.Queue(fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 1))`, table))
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to seed geography: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit geography seed: %w", err)
	}
	return nil
}
