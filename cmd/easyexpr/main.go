// Command easyexpr compiles and executes a script file against a JSON
// input document, printing the resulting assignments, messages, and any
// error to stdout.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yang-sanmu/EasyExpression"
	"github.com/yang-sanmu/EasyExpression/builtin"
)

var log = logrus.New()

func main() {
	var (
		scriptPath = flag.String("script", "", "path to a script file (required)")
		inputPath  = flag.String("input", "", "path to a JSON input document")
		verbose    = flag.Bool("verbose", false, "print a boxed diagnostic report instead of a summary table")
	)
	flag.Parse()

	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if *scriptPath == "" {
		log.Fatal("-script is required")
	}

	scriptBytes, err := os.ReadFile(*scriptPath)
	if err != nil {
		log.WithError(err).Fatal("reading script file")
	}

	inputs := map[string]easyexpr.Value{}
	if *inputPath != "" {
		inputBytes, err := os.ReadFile(*inputPath)
		if err != nil {
			log.WithError(err).Fatal("reading input file")
		}
		inputs, err = decodeInputs(inputBytes)
		if err != nil {
			log.WithError(err).Fatal("decoding JSON input")
		}
	}

	engine := easyexpr.New(easyexpr.WithTracing(true))
	builtin.RegisterAll(engine.Functions())

	script := string(scriptBytes)
	start := time.Now()
	result := engine.Execute(script, inputs)

	log.WithFields(logrus.Fields{
		"elapsed":   result.Elapsed,
		"has_error": result.HasError,
		"trace_id":  result.TraceID,
		"started":   humanize.Time(start),
	}).Info("script executed")

	if *verbose {
		os.Stdout.WriteString(easyexpr.DiagnosticReport(script, result))
		os.Stdout.WriteString("\n")
	} else {
		os.Stdout.WriteString(result.String())
		os.Stdout.WriteString("\n")
	}

	if result.HasError {
		os.Exit(1)
	}
}

// decodeInputs maps a JSON object's top-level fields into engine Values:
// JSON string/bool/null map directly, JSON numbers become exact decimals
// via their original text (not float64) so integer inputs round-trip
// without binary floating-point drift.
func decodeInputs(data []byte) (map[string]easyexpr.Value, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var raw map[string]interface{}
	if err := decoder.Decode(&raw); err != nil {
		return nil, err
	}

	out := make(map[string]easyexpr.Value, len(raw))
	for k, v := range raw {
		out[k] = jsonToValue(v)
	}
	return out, nil
}

func jsonToValue(v interface{}) easyexpr.Value {
	switch t := v.(type) {
	case nil:
		return easyexpr.Null
	case bool:
		return easyexpr.Bool(t)
	case string:
		return easyexpr.String(t)
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return easyexpr.String(t.String())
		}
		return easyexpr.Number(d)
	default:
		// Nested objects/arrays have no Value representation; stringify
		// them rather than silently dropping the field.
		b, _ := json.Marshal(t)
		return easyexpr.String(string(b))
	}
}
