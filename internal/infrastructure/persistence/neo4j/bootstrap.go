package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// EnsureConstraints 创建图库约束和索引，幂等。
func (r *GraphRepository) EnsureConstraints(ctx context.Context) error {
	statements := []string{
		`CREATE CONSTRAINT talk_id IF NOT EXISTS FOR (t:Talk) REQUIRE t.id IS UNIQUE`,
		`CREATE CONSTRAINT speaker_id IF NOT EXISTS FOR (s:Speaker) REQUIRE s.id IS UNIQUE`,
		`CREATE CONSTRAINT event_id IF NOT EXISTS FOR (e:Event) REQUIRE e.id IS UNIQUE`,
		`CREATE CONSTRAINT category_id IF NOT EXISTS FOR (c:Category) REQUIRE c.id IS UNIQUE`,
		`CREATE CONSTRAINT tag_id IF NOT EXISTS FOR (g:Tag) REQUIRE g.id IS UNIQUE`,
		`CREATE INDEX talk_title IF NOT EXISTS FOR (t:Talk) ON (t.title)`,
		`CREATE INDEX speaker_name IF NOT EXISTS FOR (s:Speaker) ON (s.name)`,
	}

	session := r.client.writeSession(ctx)
	defer session.Close(ctx)

	for _, stmt := range statements {
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			res, err := tx.Run(ctx, stmt, nil)
			if err != nil {
				return nil, err
			}
			return nil, res.Err()
		})
		if err != nil {
			return fmt.Errorf("failed to apply constraint: %w", err)
		}
	}
	return nil
}
