package devops

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

type DBEntry struct {
	Name     string `yaml:"name"`
	Host     string `yaml:"host"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// GetDSN builds a go-sql-driver DSN, defaulting the port to 3306.
func (db DBEntry) GetDSN(dbname string) string {
	host := db.Host
	if !strings.Contains(host, ":") {
		host = host + ":3306"
	}
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=true", db.Username, db.Password, host, dbname)
}

var (
	mu    sync.Mutex
	cache = map[string][]DBEntry{}
)

// LoadDBConfig reads the yaml database list stored in an SSM parameter.
// Results are cached per parameter for the life of the process.
func LoadDBConfig(ctx context.Context, paramName string) ([]DBEntry, error) {
	mu.Lock()
	defer mu.Unlock()

	if entries, ok := cache[paramName]; ok {
		return entries, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := ssm.NewFromConfig(cfg)

	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(paramName),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get parameter: %w", err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return nil, fmt.Errorf("parameter %s is empty", paramName)
	}

	entries, err := ParseDBEntries([]byte(*out.Parameter.Value))
	if err != nil {
		return nil, err
	}

	cache[paramName] = entries
	return entries, nil
}

func ParseDBEntries(data []byte) ([]DBEntry, error) {
	var parsed []DBEntry
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	return parsed, nil
}

// FindEntry looks up an entry by name, case-insensitively.
func FindEntry(entries []DBEntry, name string) (DBEntry, bool) {
	for _, e := range entries {
		if strings.EqualFold(e.Name, name) {
			return e, true
		}
	}
	return DBEntry{}, false
}
