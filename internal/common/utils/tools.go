package utils

import (
	"encoding/base64"
	"encoding/binary"
	"math/rand"
	"strings"
	"time"
)

func IsFixedPhone(phone string) bool {
	if _, ok := DefaultConf.SMS.FixedCodes[phone]; ok {
		return true
	}
	return false
}

const AlphaNum = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateID utils func: for 12-digit random id generation
func GenerateID() string {
	idLength := 12
	stringBuilder := strings.Builder{}
	for i := 0; i < idLength; i++ {
		index := rand.Intn(36)
		stringBuilder.WriteRune(rune(AlphaNum[index]))
	}
	return stringBuilder.String()
}

var pid = uint32(time.Now().UnixNano() % 4294967291)

// NewReqID for generate req id
func NewReqID() string {
	var b [12]byte
	binary.LittleEndian.PutUint32(b[:], pid)
	binary.LittleEndian.PutUint64(b[4:], uint64(time.Now().UnixNano()))
	return base64.URLEncoding.EncodeToString(b[:])
}

func TimedTask(t time.Time, task func()) {
	if t.Before(time.Now()) {
		go task()
	} else {
		go func() {
			<-time.After(time.Duration(t.UnixMilli()-time.Now().UnixMilli()) * time.Millisecond)
			task()
		}()
	}
}
