package webui

const defaultIndexHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>veoscene</title>
  <style>
    body { font-family: "Segoe UI", sans-serif; margin: 0; background: #0f0f10; color: #e7e2d8; }
    .wrap { max-width: 960px; margin: 0 auto; padding: 20px; }
    .panel { background: #1a1a1c; border: 1px solid #2c2c30; border-radius: 12px; padding: 16px; margin-bottom: 16px; }
    label { display: block; font-size: 12px; text-transform: uppercase; letter-spacing: .08em; color: #a8a29e; margin: 12px 0 4px; }
    input, select, textarea { width: 100%; box-sizing: border-box; padding: 10px; border: 1px solid #3f3f46; border-radius: 8px; background: #111113; color: inherit; }
    .row { display: flex; gap: 12px; }
    .row > div { flex: 1; }
    button { padding: 10px 16px; border: 0; border-radius: 8px; background: #c9a227; color: #111; cursor: pointer; margin-top: 14px; }
    button:disabled { opacity: .4; cursor: not-allowed; }
    .tabs button { background: #2c2c30; color: #e7e2d8; margin-right: 6px; }
    .tabs button.active { background: #c9a227; color: #111; }
    #out { white-space: pre-wrap; font-family: ui-monospace, monospace; font-size: 13px; min-height: 320px; }
    #err { color: #f87171; }
  </style>
</head>
<body>
  <div class="wrap">
    <div class="panel">
      <h2>veoscene</h2>
      <div class="row">
        <div><label>Duration</label><select id="duration"></select></div>
        <div><label>Scene type</label><select id="sceneType"></select></div>
      </div>
      <label>Visual mood</label><input id="mood" placeholder="Warm intimacy meeting cold precision" />
      <label>Location</label><input id="location" placeholder="Swiss watchmaking atelier" />
      <label>Brand references (optional)</label><textarea id="brand" rows="2"></textarea>
      <label>API key (used for this request only, never stored)</label><input id="key" type="password" autocomplete="off" />
      <label><input id="consent" type="checkbox" style="width:auto" /> I understand my key is sent to the generation service for this one request.</label>
      <button id="generate" disabled>Generate</button>
      <button id="sample">View sample</button>
      <div id="err"></div>
    </div>
    <div class="panel">
      <div class="tabs">
        <button data-view="storyboard" class="active">Storyboard</button>
        <button data-view="veo-prompt">Veo Prompt</button>
        <button data-view="json">JSON</button>
      </div>
      <div id="out"></div>
    </div>
  </div>
  <script>
    const $ = (id) => document.getElementById(id);
    let view = 'storyboard';
    let last = null;

    async function init() {
      const status = await (await fetch('/api/status')).json();
      status.durations.forEach(d => $('duration').add(new Option(d + ' Minutes', d, d === 5, d === 5)));
      status.scene_types.forEach(t => $('sceneType').add(new Option(t.label, t.value)));
    }
    function valid() {
      return $('mood').value.trim() && $('location').value.trim() && $('key').value.trim() && $('consent').checked;
    }
    function refresh() { $('generate').disabled = !valid(); }
    ['mood', 'location', 'key'].forEach(id => $(id).addEventListener('input', refresh));
    $('consent').addEventListener('change', refresh);

    async function show(url, init) {
      $('err').textContent = '';
      const resp = await fetch(url + (url.includes('?') ? '&' : '?') + 'view=' + view, init);
      if (!resp.ok) {
        const data = await resp.json();
        $('err').textContent = (data.kind ? '[' + data.kind + '] ' : '') + (data.error || resp.status);
        return;
      }
      $('out').textContent = view === 'json' ? JSON.stringify(await resp.json(), null, 2) : await resp.text();
    }
    $('sample').addEventListener('click', () => { last = ['/api/sample']; show('/api/sample'); });
    $('generate').addEventListener('click', async () => {
      const body = JSON.stringify({
        api_key: $('key').value.trim(),
        config: {
          duration: Number($('duration').value),
          sceneType: $('sceneType').value,
          visualMood: $('mood').value.trim(),
          location: $('location').value.trim(),
          brandReferences: $('brand').value.trim()
        }
      });
      $('key').value = '';
      refresh();
      $('generate').textContent = 'Generating...';
      await show('/api/generate', { method: 'POST', headers: { 'Content-Type': 'application/json' }, body });
      $('generate').textContent = 'Generate';
      last = null;
    });
    document.querySelectorAll('.tabs button').forEach(b => b.addEventListener('click', () => {
      document.querySelectorAll('.tabs button').forEach(x => x.classList.remove('active'));
      b.classList.add('active');
      view = b.dataset.view;
      if (last) show(...last);
    }));
    init();
  </script>
</body>
</html>`
