package tree

const sampleListing = `[
  {"type":"directory","name":"root","contents":[
    {"type":"directory","name":"a","contents":[
      {"type":"directory","name":"1","contents":[
        {"type":"file","name":"image.jpg"},
        {"type":"file","name":"image.png"}
    ]},
      {"type":"directory","name":"2"},
      {"type":"directory","name":"duplicate-dir","contents":[
        {"type":"file","name":"nested-duplicate"},
        {"type":"file","name":"file.txt"}
    ]},
      {"type":"file","name":"duplicate.txt"},
      {"type":"file","name":"icon.svg"}
  ]},
    {"type":"directory","name":"b","contents":[
      {"type":"directory","name":"1","contents":[
        {"type":"file","name":"file.txt"}
    ]},
      {"type":"directory","name":"duplicate-dir","contents":[
        {"type":"file","name":"nested-duplicate"}
    ]},
      {"type":"file","name":"duplicate.txt"},
      {"type":"file","name":"file.md"}
  ]},
    {"type":"file","name":"file.dat"}
  ]},
  {"type":"report","directories":7,"files":11}
]`

const sampleSize = 19

const assetsListing = `[
  {"type":"directory","name":"beatonma-gulp/src/raw assets","contents":[
    {"type":"directory","name":"apps","contents":[
      {"type":"directory","name":"android","contents":[
        {"type":"file","name":"form.svg"},
        {"type":"file","name":"io16.svg"}
      ]},
      {"type":"file","name":"microformats-reader.svg"}
  ]},
    {"type":"directory","name":"app-type","contents":[
      {"type":"file","name":"android.svg"},
      {"type":"file","name":"arduino.svg"},
      {"type":"file","name":"chrome.svg"},
      {"type":"file","name":"django.svg"},
      {"type":"file","name":"node-js.svg"},
      {"type":"file","name":"webapp.png"},
      {"type":"file","name":"python.svg"},
      {"type":"file","name":"webapp.svg"}
  ]},
    {"type":"file","name":"mb.svg"}
  ]}
,
  {"type":"report","directories":2,"files":11}
]
`

const assetsSize = 16
