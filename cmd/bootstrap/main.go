package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/safishamsi/CDKG/internal/config"
	"github.com/safishamsi/CDKG/internal/infrastructure/persistence/milvus"
	"github.com/safishamsi/CDKG/internal/wire"
)

func main() {
	var entitiesFile string
	flag.StringVar(&entitiesFile, "entities", "", "JSON file of entity embeddings to seed into Milvus")
	flag.Parse()

	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. 初始化数据层（Neo4j + Milvus）
	dataLayer, cleanup, err := wire.InitializeDataLayer(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize data layer: %v", err)
	}
	defer cleanup()

	// 3. Neo4j 约束与索引
	fmt.Println("Ensuring Neo4j constraints and indexes...")
	if err := dataLayer.GraphRepo.EnsureConstraints(ctx); err != nil {
		log.Fatalf("failed to ensure neo4j constraints: %v", err)
	}
	fmt.Println("Neo4j constraints ready.")

	// 4. Milvus 实体向量集合
	fmt.Println("Ensuring Milvus entity collection...")
	if err := dataLayer.VectorRepo.EnsureEntityCollection(ctx); err != nil {
		log.Fatalf("failed to ensure milvus collection: %v", err)
	}
	fmt.Println("Milvus collection ready.")

	// 5. 可选：灌入离线算好的实体向量
	if entitiesFile != "" {
		n, err := seedEntityEmbeddings(ctx, dataLayer.VectorRepo, entitiesFile)
		if err != nil {
			log.Fatalf("failed to seed entity embeddings: %v", err)
		}
		fmt.Printf("Seeded %d entity embeddings.\n", n)
	}

	fmt.Println("Bootstrap complete.")
}

// seedEntityEmbeddings 从 JSON 文件读取实体向量并批量写入
func seedEntityEmbeddings(ctx context.Context, repo *milvus.Repository, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var embeddings []*milvus.EntityEmbedding
	if err := json.Unmarshal(raw, &embeddings); err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(embeddings) == 0 {
		return 0, nil
	}
	if err := repo.InsertEntities(ctx, embeddings); err != nil {
		return 0, err
	}
	return len(embeddings), nil
}
