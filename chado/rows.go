package chado

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Organism is a row of the organism table.
type Organism struct {
	OrganismID   int
	Abbreviation string
	Genus        string
	Species      string
	CommonName   string
}

// Feature is a row of the feature table.
type Feature struct {
	FeatureID  int
	OrganismID int
	Name       string
	UniqueName string
	TypeID     int
	SeqLen     int
}

// LocatedFeature is a feature joined with its featureloc placement.
// Features without a featureloc row have SrcUniqueName == "" and
// Fmin == Fmax == -1.
type LocatedFeature struct {
	Feature
	SrcFeatureID  int
	SrcUniqueName string
	// Fmin and Fmax are interbase coordinates as stored by chado; a
	// missing location is reported as -1.
	Fmin   int64
	Fmax   int64
	Strand int
}

// FeatureMap is a row of the featuremap table.
type FeatureMap struct {
	FeatureMapID int
	Name         string
	Description  string
}

// FeaturePos is a featurepos row joined with both feature rows: the
// positioned feature and the map feature (the linkage group) it is
// placed on.
type FeaturePos struct {
	FeatureMapID   int
	FeatureID      int
	FeatureName    string
	FeatureTypeID  int
	MapFeatureID   int
	MapFeatureName string
	Position       float64
}

// Relationship is a feature_relationship row joined with the subject
// and object feature names.
type Relationship struct {
	SubjectID   int
	SubjectName string
	ObjectID    int
	ObjectName  string
	TypeID      int
}

// Organism fetches one organism row by primary key.
func (c *Client) Organism(ctx context.Context, organismID int) (Organism, error) {
	ctx, cancel := c.queryContext(ctx)
	defer cancel()

	q := fmt.Sprintf(`
		SELECT organism_id, COALESCE(abbreviation, ''), genus, species,
		       COALESCE(common_name, '')
		FROM %s
		WHERE organism_id = $1`, c.table("organism"))

	var o Organism
	err := c.pool.QueryRow(ctx, q, organismID).
		Scan(&o.OrganismID, &o.Abbreviation, &o.Genus, &o.Species, &o.CommonName)
	if errors.Is(err, pgx.ErrNoRows) {
		return Organism{}, fmt.Errorf("organism %d not found", organismID)
	}
	if err != nil {
		return Organism{}, fmt.Errorf("fetching organism %d: %w", organismID, err)
	}
	return o, nil
}

// FeaturesOfType returns the organism's non-obsolete features of the
// given type, ordered by uniquename.
func (c *Client) FeaturesOfType(ctx context.Context, organismID, typeID int) ([]Feature, error) {
	ctx, cancel := c.queryContext(ctx)
	defer cancel()

	q := fmt.Sprintf(`
		SELECT feature_id, organism_id, COALESCE(name, ''), uniquename,
		       type_id, COALESCE(seqlen, 0)
		FROM %s
		WHERE organism_id = $1 AND type_id = $2 AND NOT is_obsolete
		ORDER BY uniquename`, c.table("feature"))

	rows, err := c.pool.Query(ctx, q, organismID, typeID)
	if err != nil {
		return nil, fmt.Errorf("querying features of type %d: %w", typeID, err)
	}
	defer rows.Close()

	var out []Feature
	for rows.Next() {
		var f Feature
		if err := rows.Scan(&f.FeatureID, &f.OrganismID, &f.Name, &f.UniqueName,
			&f.TypeID, &f.SeqLen); err != nil {
			return nil, fmt.Errorf("scanning feature row: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading feature rows: %w", err)
	}

	c.log.Debug("fetched features",
		zap.Int("organism_id", organismID),
		zap.Int("type_id", typeID),
		zap.Int("count", len(out)))
	return out, nil
}

// LocatedFeatures returns the organism's features of the given type
// together with their featureloc placement, if any.
func (c *Client) LocatedFeatures(ctx context.Context, organismID, typeID int) ([]LocatedFeature, error) {
	ctx, cancel := c.queryContext(ctx)
	defer cancel()

	q := fmt.Sprintf(`
		SELECT f.feature_id, f.organism_id, COALESCE(f.name, ''), f.uniquename,
		       f.type_id, COALESCE(f.seqlen, 0),
		       COALESCE(fl.srcfeature_id, 0), COALESCE(src.uniquename, ''),
		       fl.fmin, fl.fmax, fl.strand
		FROM %s f
		LEFT JOIN %s fl ON fl.feature_id = f.feature_id
		LEFT JOIN %s src ON src.feature_id = fl.srcfeature_id
		WHERE f.organism_id = $1 AND f.type_id = $2 AND NOT f.is_obsolete
		ORDER BY f.uniquename`,
		c.table("feature"), c.table("featureloc"), c.table("feature"))

	rows, err := c.pool.Query(ctx, q, organismID, typeID)
	if err != nil {
		return nil, fmt.Errorf("querying located features of type %d: %w", typeID, err)
	}
	defer rows.Close()

	var out []LocatedFeature
	for rows.Next() {
		var (
			f      LocatedFeature
			fmin   *int64
			fmax   *int64
			strand *int16
		)
		if err := rows.Scan(&f.FeatureID, &f.OrganismID, &f.Name, &f.UniqueName,
			&f.TypeID, &f.SeqLen,
			&f.SrcFeatureID, &f.SrcUniqueName, &fmin, &fmax, &strand); err != nil {
			return nil, fmt.Errorf("scanning located feature row: %w", err)
		}
		f.Fmin, f.Fmax = -1, -1
		if fmin != nil {
			f.Fmin = *fmin
		}
		if fmax != nil {
			f.Fmax = *fmax
		}
		if strand != nil {
			f.Strand = int(*strand)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading located feature rows: %w", err)
	}

	c.log.Debug("fetched located features",
		zap.Int("organism_id", organismID),
		zap.Int("type_id", typeID),
		zap.Int("count", len(out)))
	return out, nil
}

// FeatureMaps returns the genetic maps linked to the organism via
// featuremap_organism.
func (c *Client) FeatureMaps(ctx context.Context, organismID int) ([]FeatureMap, error) {
	ctx, cancel := c.queryContext(ctx)
	defer cancel()

	q := fmt.Sprintf(`
		SELECT m.featuremap_id, COALESCE(m.name, ''), COALESCE(m.description, '')
		FROM %s m
		JOIN %s mo ON mo.featuremap_id = m.featuremap_id
		WHERE mo.organism_id = $1
		ORDER BY m.name`,
		c.table("featuremap"), c.table("featuremap_organism"))

	rows, err := c.pool.Query(ctx, q, organismID)
	if err != nil {
		return nil, fmt.Errorf("querying feature maps: %w", err)
	}
	defer rows.Close()

	var out []FeatureMap
	for rows.Next() {
		var m FeatureMap
		if err := rows.Scan(&m.FeatureMapID, &m.Name, &m.Description); err != nil {
			return nil, fmt.Errorf("scanning featuremap row: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading featuremap rows: %w", err)
	}
	return out, nil
}

// FeaturePositions returns the featurepos rows of one genetic map,
// joined with the positioned feature and the linkage group it sits on.
func (c *Client) FeaturePositions(ctx context.Context, featureMapID int) ([]FeaturePos, error) {
	ctx, cancel := c.queryContext(ctx)
	defer cancel()

	q := fmt.Sprintf(`
		SELECT fp.featuremap_id, f.feature_id, f.uniquename, f.type_id,
		       lg.feature_id, lg.uniquename, COALESCE(fp.mappos, 0)
		FROM %s fp
		JOIN %s f ON f.feature_id = fp.feature_id
		JOIN %s lg ON lg.feature_id = fp.map_feature_id
		WHERE fp.featuremap_id = $1
		ORDER BY lg.uniquename, fp.mappos`,
		c.table("featurepos"), c.table("feature"), c.table("feature"))

	rows, err := c.pool.Query(ctx, q, featureMapID)
	if err != nil {
		return nil, fmt.Errorf("querying feature positions for map %d: %w", featureMapID, err)
	}
	defer rows.Close()

	var out []FeaturePos
	for rows.Next() {
		var p FeaturePos
		if err := rows.Scan(&p.FeatureMapID, &p.FeatureID, &p.FeatureName,
			&p.FeatureTypeID, &p.MapFeatureID, &p.MapFeatureName, &p.Position); err != nil {
			return nil, fmt.Errorf("scanning featurepos row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading featurepos rows: %w", err)
	}

	c.log.Debug("fetched feature positions",
		zap.Int("featuremap_id", featureMapID),
		zap.Int("count", len(out)))
	return out, nil
}

// Relationships returns the feature_relationship rows of the given
// relationship type for subjects belonging to the organism.
func (c *Client) Relationships(ctx context.Context, organismID, typeID int) ([]Relationship, error) {
	ctx, cancel := c.queryContext(ctx)
	defer cancel()

	q := fmt.Sprintf(`
		SELECT fr.subject_id, s.uniquename, fr.object_id, o.uniquename, fr.type_id
		FROM %s fr
		JOIN %s s ON s.feature_id = fr.subject_id
		JOIN %s o ON o.feature_id = fr.object_id
		WHERE s.organism_id = $1 AND fr.type_id = $2
		ORDER BY s.uniquename, o.uniquename`,
		c.table("feature_relationship"), c.table("feature"), c.table("feature"))

	rows, err := c.pool.Query(ctx, q, organismID, typeID)
	if err != nil {
		return nil, fmt.Errorf("querying relationships of type %d: %w", typeID, err)
	}
	defer rows.Close()

	var out []Relationship
	for rows.Next() {
		var r Relationship
		if err := rows.Scan(&r.SubjectID, &r.SubjectName, &r.ObjectID,
			&r.ObjectName, &r.TypeID); err != nil {
			return nil, fmt.Errorf("scanning relationship row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading relationship rows: %w", err)
	}
	return out, nil
}
