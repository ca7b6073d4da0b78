package api

const docsHTML = `<!doctype html>
<html lang="en" data-theme="dark">
<head>
  <meta charset="utf-8" />
  <meta name="referrer" content="same-origin" />
  <meta name="viewport" content="width=device-width, initial-scale=1, shrink-to-fit=no" />
  <title>Star Chart Proxy API</title>
  <link href="https://unpkg.com/@stoplight/elements@9.0.0/styles.min.css" rel="stylesheet" />
  <script src="https://unpkg.com/@stoplight/elements@9.0.0/web-components.min.js" crossorigin="anonymous"></script>
</head>
<body style="height: 100vh; margin: 0; display: flex; flex-direction: column;">
  <header style="padding: 10px 16px; background: #0b1026; color: #c9d1d9; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; font-size: 13px; border-bottom: 1px solid #30363d;">
    <strong style="color: #f0e6a8;">&#9733; Star Chart Proxy</strong>
    <span style="margin-left: 8px;">Forwards chart requests to AstronomyAPI with server-held credentials. Status and body are relayed unchanged.</span>
  </header>
  <elements-api
    style="flex: 1; min-height: 0;"
    apiDescriptionUrl="/openapi.json"
    router="hash"
    layout="sidebar"
    hideExport
    tryItCredentialsPolicy="same-origin"
    darkMode
  />
</body>
</html>`
