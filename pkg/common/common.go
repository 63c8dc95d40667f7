package common

import (
	"crypto/sha256"
	"fmt"
	"os"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/labstack/gommon/random"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var snowflakeNode *snowflake.Node

func init() {
	var err error
	snowflakeNode, err = snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
}

// UUIDint64 generates a snowflake based int64 id
func UUIDint64() int64 {
	return snowflakeNode.Generate().Int64()
}

// UUID generates a snowflake based string id
func UUID() string {
	return snowflakeNode.Generate().String()
}

// ReceiptNo generates a short random receipt reference for gateway orders
func ReceiptNo() string {
	return "rcpt_" + random.String(16, random.Alphanumeric)
}

func Sha256Hash(src string) string {
	h := sha256.New()
	h.Write([]byte(src))
	return fmt.Sprintf("%x", h.Sum(nil))
}

func Sha256HashWithSalt(src string, salt string) string {
	return Sha256Hash(src + salt)
}

func GetSecretSalt() string {
	if v := strings.TrimSpace(os.Getenv("BILLZIO_SECRET_SALT")); v != "" {
		return v
	}
	return "billzio-secret-salt"
}

func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
