// kdcpay-gateway/tools/cmd/callbackgen/main.go
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/example/kdcpay-gateway/internal/kdcpay"
)

var statuses = []string{"success", "pending", "fail"}

func main() {
	n := flag.Int("n", 20, "number of callbacks (without header)")
	out := flag.String("out", "testdata/callbacks.csv", "output CSV path")
	secret := flag.String("secret", "", "merchant key used to sign")
	base := flag.String("base", "http://localhost:8080/tickets/", "callback URL of the running service")
	tamper := flag.Float64("tamper", 0.1, "share of rows with a corrupted checksum")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	if *secret == "" {
		log.Fatal("-secret is required")
	}
	rnd := rand.New(rand.NewSource(*seed))

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		log.Fatal(err)
	}
	f, err := os.Create(*out)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	_ = w.Write([]string{"token", "status", "tampered", "url", "body"})
	for i := 0; i < *n; i++ {
		token := fmt.Sprintf("TKN%06d", i+1)
		status := statuses[rnd.Intn(len(statuses))]
		tampered := rnd.Float64() < *tamper

		p := kdcpay.NewPayload()
		p.Set(kdcpay.FieldStatus, status)
		p.Set(kdcpay.FieldOrderID, kdcpay.OrderID(token))
		p.Set(kdcpay.FieldResponseCode, "0")
		p.Set(kdcpay.FieldResponseDescription, "Generated callback")
		p.Set(kdcpay.FieldAmount, fmt.Sprintf("%.2f", 10+rnd.Float64()*1000))
		p.Set(kdcpay.FieldTrackID, fmt.Sprintf("TRK%08d", rnd.Intn(1e8)))
		p.Set(kdcpay.FieldPGID, fmt.Sprintf("PG%06d", rnd.Intn(1e6)))
		p.Set(kdcpay.FieldBankID, fmt.Sprintf("BNK%04d", rnd.Intn(1e4)))
		p.Set(kdcpay.FieldPaidBy, "NB")
		sum := kdcpay.Checksum(p, kdcpay.RoleCallback, *secret)
		if tampered {
			flip := "0"
			if sum[0] == '0' {
				flip = "1"
			}
			sum = flip + sum[1:]
		}
		p.Set(kdcpay.FieldChecksum, sum)

		row := []string{
			token,
			status,
			fmt.Sprintf("%t", tampered),
			kdcpay.CallbackURL(*base, kdcpay.ActionReturn, token),
			p.Encode(),
		}
		if err := w.Write(row); err != nil {
			log.Fatal(err)
		}
	}
	log.Printf("generated %s (%d rows + header)", *out, *n)
}
