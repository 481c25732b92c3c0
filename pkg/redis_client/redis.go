package redis_client

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/adjust/rmq/v5"
	"github.com/redis/go-redis/v9"
	"github.com/travigo/transferboard/pkg/util"
)

var Client *redis.Client
var QueueConnection rmq.Connection

var ErrNotConfigured = errors.New("TRANSFERBOARD_REDIS_ADDRESS is not set")

const queueConnectionTag = "transferboard"
const defaultConnectionPassword = ""
const defaultDatabase = 0

// Connect opens the shared redis client and queue connection. Redis is
// optional for the board, so a missing address is reported as ErrNotConfigured.
func Connect() error {
	password := defaultConnectionPassword
	database := defaultDatabase

	env := util.GetEnvironmentVariables()

	address := env["TRANSFERBOARD_REDIS_ADDRESS"]
	if address == "" {
		return ErrNotConfigured
	}

	if env["TRANSFERBOARD_REDIS_PASSWORD"] != "" {
		password = env["TRANSFERBOARD_REDIS_PASSWORD"]
	}

	if env["TRANSFERBOARD_REDIS_DATABASE"] != "" {
		if n, err := strconv.Atoi(env["TRANSFERBOARD_REDIS_DATABASE"]); err == nil {
			database = n
		} else {
			return fmt.Errorf("TRANSFERBOARD_REDIS_DATABASE: %w", err)
		}
	}

	Client = redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})

	statusCmd := Client.Ping(context.Background())
	err := statusCmd.Err()
	if err != nil {
		return err
	}

	QueueConnection, err = rmq.OpenConnectionWithRedisClient(queueConnectionTag, Client, nil)

	if err != nil {
		return err
	}

	return nil
}

func Close() {
	if QueueConnection != nil {
		<-QueueConnection.StopAllConsuming()
	}
	if Client != nil {
		Client.Close()
	}
}
