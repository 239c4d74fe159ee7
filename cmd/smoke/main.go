// Command smoke checks a running "addrecon serve" end to end with a generated pair of
// workbooks.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/xuri/excelize/v2"
)

func main() {
	baseURL := os.Getenv("SMOKE_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	apiKey := os.Getenv("ORACLE_API_KEY")

	fmt.Println("Starting smoke test against", baseURL)

	fmt.Println("1. Health...")
	if _, ok := sendRequest(http.MethodGet, baseURL+"/health", nil, "", ""); !ok {
		fmt.Println("FAILED: Health")
		os.Exit(1)
	}
	fmt.Println("PASSED: Health")

	fmt.Println("2. Reconcile...")
	primary, err := buildWorkbook("LAX", []string{"processed_address", "Merged Mobiles"}, [][]string{
		{"1600 Amphitheatre Pkwy, Mountain View, CA 94043", "6502530000"},
		{"350 5th Ave Apt 12B, New York, NY 10118", "2127363100"},
	})
	if err != nil {
		fmt.Printf("Error building primary workbook: %v\n", err)
		os.Exit(1)
	}
	reference, err := buildReference(map[string][][]string{
		"Tony单提 (需整理)": {{"1600 Amphitheatre Parkway, Mountain View, California", "6502530000"}},
		"加单":           {},
		"CargoVan":     {},
		"卡车":           {{"1 Infinite Loop, Cupertino, CA", "4089961010"}},
	})
	if err != nil {
		fmt.Printf("Error building reference workbook: %v\n", err)
		os.Exit(1)
	}

	body, contentType, err := multipartBody(map[string][]byte{"primary": primary, "reference": reference})
	if err != nil {
		fmt.Printf("Error encoding upload: %v\n", err)
		os.Exit(1)
	}

	respBody, ok := sendRequest(http.MethodPost, baseURL+"/reconcile?format=json", body, contentType, apiKey)
	if !ok {
		fmt.Println("FAILED: Reconcile")
		os.Exit(1)
	}

	var result struct {
		RunID   string `json:"run_id"`
		Records []struct {
			Address string `json:"address"`
			Color   string `json:"color"`
		} `json:"records"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil || result.RunID == "" {
		fmt.Printf("FAILED: Reconcile returned an unexpected body: %s\n", string(respBody))
		os.Exit(1)
	}
	fmt.Printf("PASSED: Reconcile (run %s, %d unmatched)\n", result.RunID, len(result.Records))
}

func buildWorkbook(sheet string, header []string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if err := writeRows(f, sheet, header, rows); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildReference(sheets map[string][][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	header := []string{"Pickup Address*", "Phone Number*"}
	for name, rows := range sheets {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
		if err := writeRows(f, name, header, rows); err != nil {
			return nil, err
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, header []string, rows [][]string) error {
	all := append([][]string{header}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

func multipartBody(files map[string][]byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, data := range files {
		part, err := mw.CreateFormFile(field, field+".xlsx")
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(data); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func sendRequest(method, url string, body io.Reader, contentType, apiKey string) ([]byte, bool) {
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return nil, false
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if apiKey != "" {
		req.Header.Set("X-Oracle-Key", apiKey)
	}

	// every unique address costs one oracle call per reference row
	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return nil, false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return nil, false
	}
	return respBody, true
}
