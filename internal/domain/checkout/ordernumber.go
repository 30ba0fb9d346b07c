package checkout

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// Order numbers are human-legible and unique by construction (time component
// plus random suffix); they are not re-checked against the store.
const orderNumberPrefix = "CSZ"

const base36Upper = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func randomSuffix(n int) string {
	var b strings.Builder
	b.Grow(n)
	for range n {
		b.WriteByte(base36Upper[rand.IntN(len(base36Upper))])
	}
	return b.String()
}

// cardOrderNumber formats CSZ-YYYY-<unix millis in base36><4 random chars>.
func cardOrderNumber(now time.Time) string {
	millis := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	return fmt.Sprintf("%s-%d-%s%s", orderNumberPrefix, now.Year(), millis, randomSuffix(4))
}

// bankOrderNumber formats CSZ-YYYYMM-<6 random chars>. It doubles as the
// payment reference customers put on their bank transfer, so it is shorter
// and carries no timestamp noise.
func bankOrderNumber(now time.Time) string {
	return fmt.Sprintf("%s-%04d%02d-%s", orderNumberPrefix, now.Year(), int(now.Month()), randomSuffix(6))
}
