package dbx

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"math"

	"github.com/mealforge/recipe-service/pkg/logx"
)

// GenerateRandomInt64Id generates a random, non-zero 64-bit integer that can be
// used as a unique identifier for transactions. It uses the crypto/rand package
// and retries until a non-zero value is produced.
func GenerateRandomInt64Id() int64 {
	var idNum uint64

	for idNum == 0 {
		err := binary.Read(rand.Reader, binary.BigEndian, &idNum)
		if err != nil {
			logx.GetLogger().LogError(context.TODO(), "error generating 64-bit random ID", err)
			continue
		}

		idNum %= uint64(math.MaxInt64)
	}

	return int64(idNum)
}
