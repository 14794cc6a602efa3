// Copyright 2023 uhppoted@twyst.co.za. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

/*
Package docgen generates a document from a Google Docs template for each row of a Google Sheets worksheet.

Each data row is copied from the template into a Google Drive folder, the {{column}} placeholders in the copy are
replaced with the row values and the link to the generated document is written back to the 'Result Link' column of
the worksheet in a single batched update.

uhppoted-app-docgen supports the following commands:

  - authorise, to authorise application access to Google Sheets, Docs and Drive for an OAuth2 client
  - generate, to generate the documents for a worksheet from the command line
  - serve, to run the generator as an HTTP service accepting multipart POST requests on /api/generate
  - get, to download a Google Sheets worksheet as a TSV file
  - put, to store a TSV file to a Google Sheets worksheet
  - version, to display the application version
*/
package docgen
